package azure

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/infrastructure/file_upload/types"
	"ekyc.io/infrastructure/logger"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	azblob_sas "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

type AzureBlobEvidenceStore struct {
	AccountName   string
	ContainerName string
	credential    *azblob.SharedKeyCredential
	client        *azblob.Client
}

func NewEvidenceStore(accountName, accountKey, containerName string) (*AzureBlobEvidenceStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		logger.Error("error generating azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL(accountName), credential, nil)
	if err != nil {
		logger.Error("error creating azblob client", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	return &AzureBlobEvidenceStore{
		AccountName:   accountName,
		ContainerName: containerName,
		credential:    credential,
		client:        client,
	}, nil
}

func serviceURL(accountName string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
}

func (s *AzureBlobEvidenceStore) Upload(ctx context.Context, blobName string, data []byte, contentType string) error {
	_, err := s.client.UploadBuffer(ctx, s.ContainerName, blobName, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		logger.Error("error uploading evidence blob", logger.LoggerOptions{
			Key:  "blob",
			Data: blobName,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return &apperrors.CollaboratorUnavailable{Collaborator: "azure_blob", Err: err}
	}
	return nil
}

// SignedURL returns a SAS URL for blobName valid for ttl. Exactly one of read
// or write must be granted.
func (s *AzureBlobEvidenceStore) SignedURL(blobName string, permission types.SignedURLPermission, ttl time.Duration) (*string, error) {
	if permission.Read == permission.Write {
		return nil, errors.New("permission must be either read or write")
	}
	now := time.Now().UTC()
	sasQueryParams, err := azblob_sas.BlobSignatureValues{
		Protocol:      azblob_sas.ProtocolHTTPS,
		StartTime:     now,
		ExpiryTime:    now.Add(ttl),
		Permissions:   (&azblob_sas.BlobPermissions{Read: permission.Read, Write: permission.Write, Delete: permission.Delete}).String(),
		ContainerName: s.ContainerName,
		BlobName:      blobName,
	}.SignWithSharedKey(s.credential)
	if err != nil {
		logger.Error("error signing blob values", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	sasURL := fmt.Sprintf("%s%s/%s?%s", serviceURL(s.AccountName), s.ContainerName, blobName, sasQueryParams.Encode())
	return &sasURL, nil
}

func (s *AzureBlobEvidenceStore) Delete(ctx context.Context, blobName string) error {
	_, err := s.client.DeleteBlob(ctx, s.ContainerName, blobName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		logger.Error("error deleting evidence blob", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	return nil
}

func (s *AzureBlobEvidenceStore) Exists(ctx context.Context, blobName string) (bool, error) {
	_, err := s.client.ServiceClient().NewContainerClient(s.ContainerName).NewBlobClient(blobName).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
