package contracts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/runnerr0/wochenfazit/internal/storage"
)

// ErrDuplicate is returned when a (keyword, contract id) pair already exists.
var ErrDuplicate = errors.New("keyword already mapped to contract")

// ErrInvalidContractID is returned for contract ids other than #1 to #99999.
var ErrInvalidContractID = errors.New("invalid contract id")

// KeywordStore is the part of the time store that maintains keywords.
type KeywordStore interface {
	KeywordSource
	AddKeyword(ctx context.Context, kw *storage.ContractKeyword) (bool, error)
	DeleteKeyword(ctx context.Context, keyword string) (int64, error)
}

var (
	contractIDPattern = regexp.MustCompile(`^#[1-9][0-9]{0,4}$`)
	// an entry already carrying a contract reads "<text> #<id>"
	contractSuffix = regexp.MustCompile(`^([^#:]+)[ ]+#([1-9][0-9]{0,4}):$`)
)

// NormalizeContractID adds a missing leading # and validates the id.
func NormalizeContractID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if !strings.HasPrefix(id, "#") {
		id = "#" + id
	}
	if !contractIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidContractID, id)
	}
	return id, nil
}

// HasContractSuffix reports whether entry ends with a " #<id>" contract reference.
func HasContractSuffix(entry string) bool {
	return contractSuffix.MatchString("  " + entry + ":")
}

// Add stores a new keyword mapping.
func Add(ctx context.Context, store KeywordStore, keyword, contractID, task string) (*storage.ContractKeyword, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errors.New("keyword must not be empty")
	}
	id, err := NormalizeContractID(contractID)
	if err != nil {
		return nil, err
	}
	kw := &storage.ContractKeyword{Keyword: keyword, ContractID: id, Task: strings.TrimSpace(task)}
	added, err := store.AddKeyword(ctx, kw)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, fmt.Errorf("%w: %s %s", ErrDuplicate, keyword, id)
	}
	return kw, nil
}

// Delete removes every mapping of keyword. Deleting an unknown keyword
// returns storage.ErrNotFound.
func Delete(ctx context.Context, store KeywordStore, keyword string) (int64, error) {
	n, err := store.DeleteKeyword(ctx, strings.TrimSpace(keyword))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("keyword %q: %w", keyword, storage.ErrNotFound)
	}
	return n, nil
}
