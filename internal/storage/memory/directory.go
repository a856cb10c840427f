package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

// Directory keeps accounts in memory.
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	emails   map[string]string // lower-cased email -> account id
}

func NewDirectory() *Directory {
	return &Directory{
		accounts: make(map[string]models.Account),
		emails:   make(map[string]string),
	}
}

func (d *Directory) Create(ctx context.Context, name, email string) (models.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, taken := d.emails[key]; taken {
		return models.Account{}, interfaces.ErrEmailTaken
	}

	a := models.Account{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	d.accounts[a.ID] = a
	d.emails[key] = a.ID
	return a, nil
}

func (d *Directory) Resolve(ctx context.Context, id string) (models.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.accounts[id]
	if !ok {
		return models.Account{}, interfaces.ErrAccountNotFound
	}
	return a, nil
}

var _ interfaces.AccountRegistry = (*Directory)(nil)
