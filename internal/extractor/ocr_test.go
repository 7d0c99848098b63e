package extractor

import (
	"context"
	"os/exec"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestIsOCRAvailable(t *testing.T) {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	assert.Equal(t, err1 == nil && err2 == nil, IsOCRAvailable())
}

func TestExtractTextOCR_MissingTools(t *testing.T) {
	if IsOCRAvailable() {
		t.Skip("OCR tools are installed; cannot test missing-tool error path")
	}
	log, _ := test.NewNullLogger()

	_, err := ExtractTextOCR(context.Background(), "/nonexistent/file.pdf", log)
	assert.Error(t, err)
}

func TestExtractTextOCR_NonexistentFile(t *testing.T) {
	if !IsOCRAvailable() {
		t.Skip("OCR tools not installed; skipping")
	}
	log, _ := test.NewNullLogger()

	_, err := ExtractTextOCR(context.Background(), "/tmp/nonexistent-file-12345.pdf", log)
	assert.Error(t, err)
}
