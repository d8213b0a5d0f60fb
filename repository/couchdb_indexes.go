package repository

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// CreateOtpPairIndex indexes challenges by their owning (email, wallet) pair
// plus creation time, so verify can pick the newest unused challenge.
func CreateOtpPairIndex(otpRepo Repository) error {
	pairIndex := map[string]interface{}{
		"index": map[string]interface{}{
			"fields": []map[string]interface{}{
				{"email": "desc"},
				{"walletAddress": "desc"},
				{"used": "desc"},
				{"created": "desc"},
			},
		},
		"name": "otp-pair-created-index",
		"ddoc": "otp-pair-created-index",
		"type": "json",
	}
	c := otpRepo.GetClient().(*resty.Client)
	resp, rErr := c.R().SetBody(pairIndex).Post(fmt.Sprintf("%s/%s", Otp, "_index"))
	if rErr != nil {
		return rErr
	}
	if resp.IsError() {
		return handleError(resp)
	}
	return nil
}

// CreateOtpExpiryIndex supports the purge job's expiresAt range scans
func CreateOtpExpiryIndex(otpRepo Repository) error {
	expiryIndex := map[string]interface{}{
		"index": map[string]interface{}{
			"fields": []string{"expiresAt"},
		},
		"name": "otp-expiry-index",
		"ddoc": "otp-expiry-index",
		"type": "json",
	}
	c := otpRepo.GetClient().(*resty.Client)
	resp, rErr := c.R().SetBody(expiryIndex).Post(fmt.Sprintf("%s/%s", Otp, "_index"))
	if rErr != nil {
		return rErr
	}
	if resp.IsError() {
		return handleError(resp)
	}
	return nil
}

// CreateDocumentHashIndex enforces fast duplicate-hash lookups on upload
func CreateDocumentHashIndex(documentRepo Repository) error {
	hashIndex := map[string]interface{}{
		"index": map[string]interface{}{
			"fields": []string{"hash"},
		},
		"name": "document-hash-index",
		"ddoc": "document-hash-index",
		"type": "json",
	}
	c := documentRepo.GetClient().(*resty.Client)
	resp, rErr := c.R().SetBody(hashIndex).Post(fmt.Sprintf("%s/%s", Documents, "_index"))
	if rErr != nil {
		return rErr
	}
	if resp.IsError() {
		return handleError(resp)
	}
	return nil
}
