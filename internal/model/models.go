package model

import (
	"strings"
	"time"
)

// FilterSet holds the criteria for one report request
type FilterSet struct {
	Plant            string `json:"plant"`              // A1_COD, required
	PrimaryStore     string `json:"primary_store"`      // A1_LOJA, required
	ClientName       string `json:"client_name"`        // substring of full or short name
	ClientPartNumber string `json:"client_part_number"` // substring, whitespace-insensitive
	VendorPartNumber string `json:"vendor_part_number"` // substring of the product code
}

// Normalize returns a copy with every field trimmed
func (f FilterSet) Normalize() FilterSet {
	return FilterSet{
		Plant:            strings.TrimSpace(f.Plant),
		PrimaryStore:     strings.TrimSpace(f.PrimaryStore),
		ClientName:       strings.TrimSpace(f.ClientName),
		ClientPartNumber: strings.TrimSpace(f.ClientPartNumber),
		VendorPartNumber: strings.TrimSpace(f.VendorPartNumber),
	}
}

// HasRequired reports whether plant and primary store are both set
func (f FilterSet) HasRequired() bool {
	n := f.Normalize()
	return n.Plant != "" && n.PrimaryStore != ""
}

// LogEntry is one line of the shared After Market spreadsheet log
type LogEntry struct {
	VendorPart   string `json:"vendor_part"`
	ClientPart   string `json:"client_part"`
	Plant        string `json:"plant"`
	Store        string `json:"store"`
	LastInvoice  string `json:"last_invoice"`
	CurrentPrice any    `json:"current_price"`
	Date         string `json:"date"`
}

// UsageEvent is one line of the usage CSV
type UsageEvent struct {
	User      string    `json:"user"`
	Routine   string    `json:"routine"`
	Timestamp time.Time `json:"timestamp"`
	Items     int       `json:"items"`
}
