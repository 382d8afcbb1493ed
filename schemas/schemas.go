// Package schemas embeds the JSON Schemas for payloads received from external services.
package schemas

import _ "embed"

// ScrapedJob is the schema of a scraper service response
//
//go:embed scraped_job.schema.json
var ScrapedJob string
