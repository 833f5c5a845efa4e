package models

// NotAvailable is the placeholder for listing fields missing upstream.
const NotAvailable = "N/A"

// JobListing is a normalized job posting returned to clients.
type JobListing struct {
	Title       string `json:"title" msgpack:"title"`
	Company     string `json:"company" msgpack:"company"`
	Location    string `json:"location" msgpack:"location"`
	Description string `json:"description" msgpack:"description"`
}
