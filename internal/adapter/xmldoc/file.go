package xmldoc

import (
	"os"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// WriteFile encodes clients into the file at path, replacing it.
func WriteFile(path string, clients []*domain.ClientAccounts) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(f, clients); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// ReadFile decodes the document stored at path.
func ReadFile(path string) ([]usecase.ImportClient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}
