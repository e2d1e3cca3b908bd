package auth

import (
	"os"
)

// EnvironmentStore implements CredentialStore using environment variables.
// Read-only: suited to scheduled pipeline deployments without a keychain.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrInvalidCredentials
}

// Retrieve gets credentials from environment variables. The name argument is
// ignored: the environment holds at most one key pair.
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	accessKey := os.Getenv("RNTAP_ACCESS_KEY")
	secretKey := os.Getenv("RNTAP_SECRET_KEY")

	if accessKey == "" || secretKey == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Name:      "environment",
		AccessKey: accessKey,
		SecretKey: secretKey,
		UserAgent: os.Getenv("RNTAP_USER_AGENT"),
	}, nil
}

// List returns the environment account if one is configured
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrCredentialsNotFound
}

// Exists checks if environment credentials are configured
func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
