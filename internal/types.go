package internal

import (
	"github.com/dealmungchi/fuaas/logger"
	"github.com/dealmungchi/fuaas/services/blob"
	"github.com/dealmungchi/fuaas/services/store"
)

// Dependencies holds the storage services shared by the commands
type Dependencies struct {
	Store *store.Store
	Blobs blob.Store
}

// Cleanup closes every initialized service
func (d *Dependencies) Cleanup() {
	if d.Blobs != nil {
		if err := d.Blobs.Close(); err != nil {
			logger.LogError("blob", err, "failed to close blob store")
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			logger.LogError("store", err, "failed to close relational store")
		}
	}
}
