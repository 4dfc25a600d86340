package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidCatalog(t *testing.T) {
	data := []byte(`{
		"opportunities": [
			{"id": "st-1", "title": "SDE Intern", "company": "Acme", "type": "internship", "tags": ["go", "sql"]},
			{"id": "st-2", "title": "Data Analyst", "company": "Globex", "sourceUrl": "https://globex.example.com/jobs/2"}
		]
	}`)

	opps, err := Parse("catalog.json", data)
	require.NoError(t, err)
	require.Len(t, opps, 2)
	assert.Equal(t, "st-1", opps[0].ID)
	assert.Equal(t, []string{"go", "sql"}, opps[0].Tags)
	assert.Equal(t, "https://globex.example.com/jobs/2", opps[1].SourceURL)
}

func TestParseRejectsMissingFields(t *testing.T) {
	data := []byte(`{"opportunities": [{"company": "Acme"}]}`)

	_, err := Parse("catalog.json", data)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Errors)

	// The error must name the offending fields, not just say "invalid".
	assert.Contains(t, ve.Error(), "id")
	assert.Contains(t, ve.Error(), "title")
}

func TestParseRejectsUnknownFields(t *testing.T) {
	data := []byte(`{"opportunities": [{"id": "x", "title": "T", "company": "C", "salary": 100}]}`)

	_, err := Parse("catalog.json", data)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"opportunities": []}`), 0o600))

	opps, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, opps)

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
