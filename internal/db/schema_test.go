package db

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_ScraperDataIsStoredAsText(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`(?m)^\s*scraper_data\s+TEXT,$`), Schema)
	assert.NotContains(t, Schema, "JSONB")
	assert.Contains(t, Schema, "ALTER COLUMN scraper_data TYPE TEXT")
}
