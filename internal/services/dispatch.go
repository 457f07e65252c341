package services

import (
	"log"
	"sync"
)

// Dispatcher запускает фоновые задачи (письма, уведомления) без ожидания со стороны
// вызывающего. Wait нужен при остановке сервера и в тестах.
type Dispatcher struct {
	wg sync.WaitGroup
}

func NewDispatcher() *Dispatcher { return &Dispatcher{} }

func (d *Dispatcher) Go(name string, fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[dispatch][%s] panic: %v", name, r)
			}
		}()
		fn()
	}()
}

func (d *Dispatcher) Wait() { d.wg.Wait() }
