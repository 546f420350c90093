package models

import "time"

// WashInfo records how the material was prepared before drying.
type WashInfo struct {
	IceAmount    float64  `json:"ice_amount"`    // kg
	WashDuration float64  `json:"wash_duration"` // minutes
	SievesUsed   []string `json:"sieves_used"`   // e.g. ["120u", "73u", "25u"]
	WashCycles   int      `json:"wash_cycles"`
}

// Batch is the logbook record of one completed run.
type Batch struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"` // grams
	Recipe      Recipe    `json:"recipe"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	WashInfo    WashInfo  `json:"wash_info"`
	TrayType    string    `json:"tray_type"`
	Notes       string    `json:"notes"`
	ResultNotes string    `json:"result_notes,omitempty"`
}

// TrayTypes lists the tray kinds an operator can record for a batch.
var TrayTypes = []string{
	"Standard Stainless Steel",
	"Silicone Lined",
	"Perforated",
	"Small Batch Tray",
}

// ValidTrayType reports whether t is empty or one of TrayTypes.
func ValidTrayType(t string) bool {
	if t == "" {
		return true
	}
	for _, known := range TrayTypes {
		if t == known {
			return true
		}
	}
	return false
}
