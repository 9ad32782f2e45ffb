package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/i18n"
	"github.com/galettery/galettery/internal/logger"
)

// DefaultSessionTTL is how long an untouched customization session is kept
const DefaultSessionTTL = 30 * time.Minute

// Session actions
const (
	ActionChoose              = "choose"
	ActionContinue            = "continue"
	ActionSkip                = "skip"
	ActionBack                = "back"
	ActionGoTo                = "goto"
	ActionToggleAllGarnitures = "toggle_all_garnitures"
	ActionSupplement          = "supplement"
	ActionSidePortion         = "side_portion"
	ActionSideSize            = "side_size"
	ActionSideSubSauce        = "side_sub_sauce"
	ActionQuantity            = "quantity"
	ActionReset               = "reset"
)

// Action is one user interaction with a customization session
type Action struct {
	Type     string `json:"type"`
	OptionID string `json:"option_id,omitempty"`
	Step     int    `json:"step,omitempty"`
	Delta    int    `json:"delta,omitempty"`
	Value    string `json:"value,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// OptionView is an option as displayed in the session's locale
type OptionView struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// StepView is a step as displayed in the session's locale
type StepView struct {
	Index    int                 `json:"index"`
	ID       customizer.StepKind `json:"id"`
	Title    string              `json:"title"`
	Type     customizer.StepType `json:"type"`
	Required bool                `json:"required"`
	Complete bool                `json:"complete"`
	Options  []OptionView        `json:"options"`
}

// SessionView is the state returned to the client after every interaction
type SessionView struct {
	ID           string                    `json:"id"`
	RestaurantID string                    `json:"restaurant_id"`
	ProductID    string                    `json:"product_id"`
	Locale       string                    `json:"locale"`
	Steps        []StepView                `json:"steps"`
	Cursor       int                       `json:"cursor"`
	AtRecap      bool                      `json:"at_recap"`
	Selection    *customizer.Selection     `json:"selection"`
	UnitPrice    decimal.Decimal           `json:"unit_price"`
	LineTotal    decimal.Decimal           `json:"line_total"`
	Breakdown    customizer.PriceBreakdown `json:"breakdown"`
	CanConfirm   bool                      `json:"can_confirm"`
	Remaining    []customizer.StepKind     `json:"remaining_required"`
	Applied      bool                      `json:"applied"`
}

// liveSession is a registered customization. Its mutex serializes requests
// that target the same session.
type liveSession struct {
	mu           sync.Mutex
	id           string
	restaurantID string
	locale       string
	translator   customizer.Translator
	session      *customizer.Session
	lastUsed     time.Time
}

// SessionService keeps the in-progress customization sessions of every client
type SessionService struct {
	log      logger.Logger
	catalog  CatalogServicer
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]*liveSession
}

// NewSessionService creates a new SessionService. A zero ttl uses DefaultSessionTTL.
func NewSessionService(log logger.Logger, catalog CatalogServicer, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		log:      log,
		catalog:  catalog,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*liveSession),
	}
}

// SetClock replaces the time source
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// Open starts a customization of a product. locale is an Accept-Language
// value or a plain locale code; it is negotiated against the restaurant's locales.
func (s *SessionService) Open(ctx context.Context, restaurantID, productID, locale string) (*SessionView, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.RestaurantID != restaurantID {
		return nil, ErrProductUnavailable
	}
	if !product.Available {
		return nil, ErrProductUnavailable
	}
	restaurant, err := s.catalog.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.catalog.GetConfiguration(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	bundle := i18n.NewBundle(append([]string{restaurant.DefaultLocale}, restaurant.Locales...)...)
	negotiated := bundle.Negotiate(locale)

	live := &liveSession{
		id:           uuid.NewString(),
		restaurantID: restaurantID,
		locale:       negotiated,
		translator:   bundle.Translator(negotiated),
		session:      customizer.NewSession(cfg, product.Item()),
		lastUsed:     s.now(),
	}

	s.mu.Lock()
	s.sessions[live.id] = live
	s.mu.Unlock()

	s.log.Debug("Session opened", "session_id", live.id, "restaurant_id", restaurantID, "product_id", productID, "locale", negotiated)
	return live.view(false), nil
}

// lookup finds a registered session
func (s *SessionService) lookup(id string) (*liveSession, error) {
	s.mu.Lock()
	live, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return live, nil
}

// Get returns the current state of a session
func (s *SessionService) Get(ctx context.Context, id string) (*SessionView, error) {
	live, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	live.lastUsed = s.now()
	return live.view(false), nil
}

// Apply performs one action. Refused actions are not errors: the returned
// view has Applied false and the state is unchanged.
func (s *SessionService) Apply(ctx context.Context, id string, a Action) (*SessionView, error) {
	live, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	live.lastUsed = s.now()

	sess := live.session
	var applied bool
	switch a.Type {
	case ActionChoose:
		applied = sess.Choose(a.OptionID)
	case ActionContinue:
		applied = sess.Continue()
	case ActionSkip:
		applied = sess.Skip()
	case ActionBack:
		applied = sess.GoBack()
	case ActionGoTo:
		applied = sess.GoToStep(a.Step)
	case ActionToggleAllGarnitures:
		applied = sess.ToggleAllGarnitures()
	case ActionSupplement:
		before := sess.Selection().Supplements[a.OptionID]
		applied = sess.AdjustSupplement(a.OptionID, a.Delta) != before
	case ActionSidePortion:
		applied = sess.SetSidePortion(a.Value)
	case ActionSideSize:
		applied = sess.SetSideSize(customizer.Size(a.Value))
	case ActionSideSubSauce:
		applied = sess.SetSideSubSauce(a.OptionID)
	case ActionQuantity:
		before := sess.Selection().Quantity
		sess.SetQuantity(a.Quantity)
		applied = sess.Selection().Quantity != before
	case ActionReset:
		sess.Reset()
		applied = true
	default:
		return nil, ErrUnknownAction
	}
	return live.view(applied), nil
}

// LineSink receives the lines of a confirmed session along with the
// restaurant the session belongs to
type LineSink func(ctx context.Context, restaurantID string, lines []customizer.CartLineItem) error

// Confirm emits the cart lines of a session and resets it for the next item
func (s *SessionService) Confirm(ctx context.Context, id string) ([]customizer.CartLineItem, error) {
	return s.ConfirmInto(ctx, id, nil)
}

// ConfirmInto hands the lines of a session to sink and resets the session
// only once sink succeeds. On error the customization is kept as it was.
func (s *SessionService) ConfirmInto(ctx context.Context, id string, sink LineSink) ([]customizer.CartLineItem, error) {
	live, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	live.lastUsed = s.now()

	lines, ok := live.session.Lines(live.translator)
	if !ok {
		return nil, ErrSessionIncomplete
	}
	if sink != nil {
		if err := sink(ctx, live.restaurantID, lines); err != nil {
			return nil, err
		}
	}
	live.session.Reset()
	s.log.Debug("Session confirmed", "session_id", id, "lines", len(lines))
	return lines, nil
}

// Cancel discards a session
func (s *SessionService) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Count returns the number of open sessions
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many were removed
func (s *SessionService) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, live := range s.sessions {
		live.mu.Lock()
		expired := live.lastUsed.Before(cutoff)
		live.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Debug("Expired sessions removed", "count", removed)
	}
	return removed
}

// StartSweeper sweeps expired sessions every interval until ctx is cancelled
func (s *SessionService) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Session sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// view renders the session in its locale. Callers hold live.mu.
func (l *liveSession) view(applied bool) *SessionView {
	sess := l.session
	cfg := sess.Configuration()
	sel := sess.Selection()
	tr := l.translator

	steps := sess.Steps()
	views := make([]StepView, len(steps))
	for i, step := range steps {
		opts := make([]OptionView, len(step.Options))
		for j, opt := range step.Options {
			opts[j] = OptionView{
				ID:    opt.ID,
				Name:  tr.Translate(opt.NameTranslations, opt.Name),
				Price: opt.PriceModifier,
			}
		}
		views[i] = StepView{
			Index:    i,
			ID:       step.ID,
			Title:    tr.Translate(step.TitleTranslations, step.Title),
			Type:     step.Type,
			Required: step.Required,
			Complete: sess.StepComplete(i),
			Options:  opts,
		}
	}

	return &SessionView{
		ID:           l.id,
		RestaurantID: l.restaurantID,
		ProductID:    sess.Item().ProductID,
		Locale:       l.locale,
		Steps:        views,
		Cursor:       sess.Cursor(),
		AtRecap:      sess.AtRecap(),
		Selection:    sel,
		UnitPrice:    sess.Price(),
		LineTotal:    customizer.LineTotal(cfg, sess.Item(), sel),
		Breakdown:    sess.Breakdown(),
		CanConfirm:   sess.CanConfirm(),
		Remaining:    sess.RemainingRequired(),
		Applied:      applied,
	}
}
