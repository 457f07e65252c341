package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialSlip_WritesPDF(t *testing.T) {
	g := NewSlipGenerator("")
	var buf bytes.Buffer

	err := g.SerialSlip(&buf, SlipData{
		StudentID:   1001,
		Email:       "a@x.edu",
		Session:     "2022-23",
		Document:    "certificate",
		Serial:      "CRTNSTU07012224101712305",
		GeneratedAt: time.Date(2024, 10, 17, 12, 30, 5, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestSerialSlip_MissingFontFallsBack(t *testing.T) {
	g := NewSlipGenerator("does/not/exist.ttf")
	var buf bytes.Buffer

	require.NoError(t, g.SerialSlip(&buf, SlipData{Serial: "TRT0101", Document: "transcript"}))
	assert.NotZero(t, buf.Len())
}
