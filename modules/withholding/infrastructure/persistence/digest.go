package persistence

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

var submissionNamespace = uuid.Must(uuid.Parse("3b0c6f7e-9a51-4c2e-8f0d-5d7b1e2a4c90"))

// canonicalPayload is the payload without the signature raster, which is
// stored in its own column. encoding/json writes map keys sorted, so equal
// payloads produce equal bytes.
func canonicalPayload(payload types.SubmissionPayload) ([]byte, error) {
	payload.SignatureImage = nil
	return json.Marshal(payload)
}

// submissionRecordID is stable for the same tenant, payload and signature, so
// a retried submission lands on the row the first attempt wrote.
func submissionRecordID(tenantID string, canonical []byte, signature []byte) string {
	h := sha256.New()
	h.Write(canonical)
	h.Write(signature)
	name := fmt.Sprintf("withholding.submission:%s:%x", tenantID, h.Sum(nil))
	return uuid.NewSHA1(submissionNamespace, []byte(name)).String()
}
