// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// AuditLog describes the de-identification of one document. It never holds
// the replaced values themselves, only short keyed hashes of them.
type AuditLog struct {
	// DocumentID identifies the document, usually its path
	DocumentID string `json:"document_id"`

	// Timestamp is when the document was de-identified
	Timestamp time.Time `json:"timestamp"`

	// Version is the phi-scrub version that produced the output
	Version string `json:"version"`

	// OriginalHash and DeidentifiedHash allow integrity checks of both texts
	OriginalHash     string `json:"original_hash"`
	DeidentifiedHash string `json:"deidentified_hash"`

	Summary      AuditSummary       `json:"summary"`
	Placeholders []PlaceholderAudit `json:"placeholders"`
}

// AuditSummary counts placeholders and replaced values.
type AuditSummary struct {
	TotalPlaceholders int            `json:"total_placeholders"`
	TotalValues       int            `json:"total_values"`
	Categories        map[string]int `json:"categories"`
}

// PlaceholderAudit is one mapping with its values replaced by hashes. The
// hashes are keyed with a key that only lives for one run, so they link
// equal values within an export but cannot be recomputed from name lists.
type PlaceholderAudit struct {
	Placeholder string   `json:"placeholder"`
	Category    string   `json:"category"`
	ValueHashes []string `json:"value_hashes"`
}

// NewAuditLog builds the audit log for a de-identified document. key keys
// the value hashes.
func NewAuditLog(documentID, original string, result *Result, version string, key []byte) *AuditLog {
	log := &AuditLog{
		DocumentID:       documentID,
		Timestamp:        time.Now(),
		Version:          version,
		OriginalHash:     GenerateDocumentHash([]byte(original)),
		DeidentifiedHash: GenerateDocumentHash([]byte(result.Text)),
		Summary:          AuditSummary{Categories: make(map[string]int)},
		Placeholders:     make([]PlaceholderAudit, 0, len(result.Mappings)),
	}
	for _, m := range result.Mappings {
		entry := PlaceholderAudit{Placeholder: m.Placeholder, Category: m.Category}
		for _, v := range m.Values {
			entry.ValueHashes = append(entry.ValueHashes, GenerateValueHash(key, v))
		}
		log.Placeholders = append(log.Placeholders, entry)
		log.Summary.TotalPlaceholders++
		log.Summary.TotalValues += len(m.Values)
		log.Summary.Categories[m.Category]++
	}
	return log
}

// Validate checks the log for completeness.
func (a *AuditLog) Validate() error {
	if a.DocumentID == "" {
		return fmt.Errorf("document_id cannot be empty")
	}
	if a.Timestamp.IsZero() {
		return fmt.Errorf("timestamp cannot be zero")
	}
	for i, p := range a.Placeholders {
		if p.Placeholder == "" {
			return fmt.Errorf("placeholders[%d].placeholder cannot be empty", i)
		}
		if len(p.ValueHashes) == 0 {
			return fmt.Errorf("placeholders[%d].value_hashes cannot be empty", i)
		}
	}
	return nil
}

// ToJSON converts the audit log to indented JSON
func (a *AuditLog) ToJSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// FromJSON decodes an audit log
func FromJSON(data []byte) (*AuditLog, error) {
	var log AuditLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit log: %w", err)
	}
	return &log, nil
}

// GenerateDocumentHash returns the hex SHA-256 of content.
func GenerateDocumentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// GenerateValueHash returns a short HMAC-SHA256 of a replaced value.
func GenerateValueHash(key []byte, value string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil)[:8])
}

// NewHashKey returns a random key for GenerateValueHash.
func NewHashKey() []byte {
	key := make([]byte, 32)
	// crypto/rand.Read never returns an error
	_, _ = rand.Read(key)
	return key
}

// AuditLogManager collects audit logs from concurrent workers. Its hash key
// is never written out.
type AuditLogManager struct {
	mu      sync.Mutex
	version string
	key     []byte
	logs    map[string]*AuditLog
}

// NewAuditLogManager creates an empty manager with a fresh hash key.
func NewAuditLogManager(version string) *AuditLogManager {
	return &AuditLogManager{version: version, key: NewHashKey(), logs: make(map[string]*AuditLog)}
}

// Record adds the audit log for a document, replacing any earlier one.
func (m *AuditLogManager) Record(documentID, original string, result *Result) *AuditLog {
	log := NewAuditLog(documentID, original, result, m.version, m.key)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[documentID] = log
	return log
}

// Count returns the number of recorded documents.
func (m *AuditLogManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// Logs returns the recorded logs sorted by document ID.
func (m *AuditLogManager) Logs() []*AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.logs))
	for id := range m.logs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*AuditLog, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.logs[id])
	}
	return out
}

// ExportAll returns every log as one JSON document.
func (m *AuditLogManager) ExportAll() ([]byte, error) {
	export := struct {
		Version   string      `json:"version"`
		Generated time.Time   `json:"generated"`
		Documents []*AuditLog `json:"documents"`
	}{
		Version:   m.version,
		Generated: time.Now(),
		Documents: m.Logs(),
	}
	return json.MarshalIndent(export, "", "  ")
}

// SaveAll validates every log and writes them to path.
func (m *AuditLogManager) SaveAll(path string) error {
	for _, log := range m.Logs() {
		if err := log.Validate(); err != nil {
			return NewRedactionError(ErrorValidation, "invalid audit log", "audit_log_manager", err)
		}
	}
	data, err := m.ExportAll()
	if err != nil {
		return fmt.Errorf("failed to export audit logs: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return NewRedactionError(ErrorFileSystem, "cannot write audit logs", "audit_log_manager", err)
	}
	return nil
}
