package checkout

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"storefront-client/internal/debounce"
	"storefront-client/internal/domain"
)

// PromoState is the promo code field's validation state.
type PromoState int

const (
	PromoEmpty PromoState = iota
	PromoValidating
	PromoValid
	PromoInvalid
)

var promoPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

type promoValidator interface {
	ValidatePromo(ctx context.Context, code string) (domain.PromoDiscount, error)
}

// PromoField runs the promo code validation state machine. Edits reset the
// applied discount immediately; server validation is debounced so rapid
// keystrokes do not each hit the backend, and a response for a superseded
// code is discarded.
type PromoField struct {
	api      promoValidator
	debounce *debounce.Debouncer

	mu      sync.Mutex
	state   PromoState
	code    string
	applied *domain.PromoDiscount
	message string
	seq     int
}

// NewPromoField builds the field with the given debounce window.
func NewPromoField(api promoValidator, window time.Duration) *PromoField {
	return &PromoField{
		api:      api,
		debounce: debounce.New(window),
	}
}

// SetCode applies a user edit. Whatever discount was previously applied is
// discarded before anything else happens; a stale discount must never stay
// visible after the code it was based on changed.
func (p *PromoField) SetCode(ctx context.Context, code string) {
	code = strings.TrimSpace(code)

	p.mu.Lock()
	p.code = code
	p.applied = nil
	p.message = ""
	p.seq++
	seq := p.seq

	if code == "" {
		p.state = PromoEmpty
		p.mu.Unlock()
		p.debounce.Stop()
		return
	}
	if !promoPattern.MatchString(code) {
		p.state = PromoInvalid
		p.message = "promo code must contain only letters and digits"
		p.mu.Unlock()
		p.debounce.Stop()
		return
	}
	p.state = PromoValidating
	p.mu.Unlock()

	p.debounce.Trigger(func() {
		p.validate(ctx, code, seq)
	})
}

func (p *PromoField) validate(ctx context.Context, code string, seq int) {
	promo, err := p.api.ValidatePromo(ctx, code)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		// The field was edited again while this validation was in flight.
		return
	}
	if err != nil {
		p.state = PromoInvalid
		p.message = validationMessage(err)
		return
	}
	p.state = PromoValid
	p.applied = &promo
}

func validationMessage(err error) string {
	var serverErr *domain.ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return serverErr.Message
	}
	var netErr *domain.NetworkError
	if errors.As(err, &netErr) {
		return "could not reach the server to validate the promo code"
	}
	return err.Error()
}

// State returns the current machine state.
func (p *PromoField) State() PromoState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Applied returns the validated discount while the state is Valid.
func (p *PromoField) Applied() (domain.PromoDiscount, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PromoValid || p.applied == nil {
		return domain.PromoDiscount{}, false
	}
	return *p.applied, true
}

// Message returns the user-facing validation message, if any.
func (p *PromoField) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.message
}

// Reset returns the field to its initial empty state.
func (p *PromoField) Reset() {
	p.debounce.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.state = PromoEmpty
	p.code = ""
	p.applied = nil
	p.message = ""
}
