package model

// Table is a physical table in the dining room.  The inventory is static:
// tables are loaded from configuration and never created at runtime.
// Capacity is informational only.
type Table struct {
	Number   int `json:"tableNumber" yaml:"number"`
	Capacity int `json:"capacity" yaml:"capacity"`
}

// SlotAvailability counts free tables for one slot.
type SlotAvailability struct {
	Time       Slot `json:"time"`
	FreeTables int  `json:"freeTables"`
}
