package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("1234"))
	assert.Equal(t, "****9705", MaskSecret("20100079705"))
	assert.Equal(t, "doc_****5678", MaskSecret("doc_12345678"))
}
