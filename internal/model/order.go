package model

import "time"

// ConfirmedMatch is a reviewer-approved pairing submitted for persistence.
type ConfirmedMatch struct {
	POItem                 string `json:"po_item"`
	CatalogItemID          string `json:"catalog_item_id"`
	CatalogItemDescription string `json:"catalog_item_description"`
}

// Order is a persisted confirmed match. ID and CreatedAt are assigned by the
// store and never change.
type Order struct {
	ID                     int64     `json:"id" yaml:"id"`
	POItem                 string    `json:"po_item" yaml:"po_item"`
	CatalogItemID          string    `json:"catalog_item_id" yaml:"catalog_item_id"`
	CatalogItemDescription string    `json:"catalog_item_description" yaml:"catalog_item_description"`
	CreatedAt              time.Time `json:"created_at" yaml:"created_at"`
}
