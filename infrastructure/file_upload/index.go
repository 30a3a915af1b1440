package fileupload

import (
	"ekyc.io/infrastructure/env"
	"ekyc.io/infrastructure/file_upload/azure"
	"ekyc.io/infrastructure/file_upload/types"
	"ekyc.io/infrastructure/logger"
)

// Evidence stays nil when no storage account is configured; attempts are then
// persisted without images.
var Evidence types.EvidenceStore

func InitialiseEvidenceStore(cfg env.StorageConfig) {
	if cfg.AzureAccountName == "" || cfg.AzureAccountKey == "" {
		logger.Warning("azure storage not configured, evidence will not be archived")
		return
	}
	store, err := azure.NewEvidenceStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
	if err != nil {
		return
	}
	Evidence = store
}
