package agentcli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextResultContentShape(t *testing.T) {
	result := TextResult("ok")
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.Equal(t, "ok", result.Content[0].Text)
	assert.False(t, result.IsError)
}

func TestImageResultContentShape(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	result := ImageResult(data, "image/png")
	require.Len(t, result.Content, 1)

	item := result.Content[0]
	assert.Equal(t, "image", item.Type)
	assert.Equal(t, data, item.Data)
	assert.Equal(t, "image/png", item.MimeType)

	// The MCP wire convention base64-encodes raw image bytes.
	raw, err := json.Marshal(item)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "3q2+7w==", decoded["data"])
}

func TestResourceResultContentShape(t *testing.T) {
	result := ResourceResult("file:///tmp/notes.txt", "text/plain", "hello")
	require.Len(t, result.Content, 1)

	item := result.Content[0]
	assert.Equal(t, "resource", item.Type)
	require.NotNil(t, item.Resource)
	assert.Equal(t, "file:///tmp/notes.txt", item.Resource.URI)
	assert.Equal(t, "text/plain", item.Resource.MimeType)
	assert.Equal(t, "hello", item.Resource.Text)
}

func TestResourceContentOmitsOptionalFields(t *testing.T) {
	item := ResourceContent("file:///tmp/blob.bin", "", "")
	raw, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	resource := decoded["resource"].(map[string]interface{})
	assert.Equal(t, "file:///tmp/blob.bin", resource["uri"])
	_, hasMime := resource["mimeType"]
	_, hasText := resource["text"]
	assert.False(t, hasMime)
	assert.False(t, hasText)
}

func TestMultiContentResultCombinesVariants(t *testing.T) {
	result := MultiContentResult(
		TextContent("summary"),
		ImageContent([]byte("x"), "image/jpeg"),
		ResourceContent("file:///a", "", ""),
	)
	require.Len(t, result.Content, 3)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.Equal(t, "image", result.Content[1].Type)
	assert.Equal(t, "resource", result.Content[2].Type)
}
