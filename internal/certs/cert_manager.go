// Package certs inspects the TLS certificate the server is started with.
package certs

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

// CertManager reads a PEM certificate file.
type CertManager struct {
	certFile string
	now      func() time.Time
}

// Status describes a loaded certificate.
type Status struct {
	Subject  string
	NotAfter time.Time
	Expired  bool
	// ExpiresSoon is set when the certificate is still valid but expires
	// within the warning window.
	ExpiresSoon bool
}

// NewCertManager creates a new CertManager for the given file.
func NewCertManager(certFile string) *CertManager {
	return &CertManager{certFile: certFile, now: time.Now}
}

// LoadCertificate parses the leaf certificate, the first CERTIFICATE block
// in the file.
func (cm *CertManager) LoadCertificate() (*x509.Certificate, error) {
	data, err := os.ReadFile(cm.certFile)
	if err != nil {
		return nil, err
	}
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, errors.New("failed to parse certificate PEM")
		}
		if block.Type == "CERTIFICATE" {
			return x509.ParseCertificate(block.Bytes)
		}
	}
}

// IsExpired checks if a certificate is expired.
func (cm *CertManager) IsExpired(cert *x509.Certificate) bool {
	return cert.NotAfter.Before(cm.now())
}

// Check loads the certificate and reports whether it is expired or will
// expire within warnWithin.
func (cm *CertManager) Check(warnWithin time.Duration) (Status, error) {
	cert, err := cm.LoadCertificate()
	if err != nil {
		return Status{}, fmt.Errorf("load %s: %w", cm.certFile, err)
	}
	st := Status{
		Subject:  cert.Subject.String(),
		NotAfter: cert.NotAfter,
		Expired:  cm.IsExpired(cert),
	}
	if !st.Expired && cert.NotAfter.Before(cm.now().Add(warnWithin)) {
		st.ExpiresSoon = true
	}
	return st, nil
}
