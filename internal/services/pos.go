package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/errors"
	"github.com/galettery/galettery/internal/logger"
	"github.com/galettery/galettery/internal/models"
)

// Person is one guest on a counter ticket. Each person customizes through an
// independent session.
type Person struct {
	Name      string                    `json:"name"`
	SessionID string                    `json:"session_id,omitempty"`
	Lines     []customizer.CartLineItem `json:"lines"`
}

// Subtotal sums the confirmed lines of the person
func (p *Person) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lines {
		total = total.Add(l.UnitPrice)
	}
	return total
}

// Ticket is an order being taken at the counter for one or more persons
type Ticket struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	TableNumber  string    `json:"table_number,omitempty"`
	Persons      []*Person `json:"persons"`
	Active       int       `json:"active"`
}

// Total sums every person's confirmed lines
func (t *Ticket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.Persons {
		total = total.Add(p.Subtotal())
	}
	return total
}

// TicketView is a ticket with its computed total
type TicketView struct {
	*Ticket
	Total decimal.Decimal `json:"total"`
}

// POSService runs counter tickets on top of the session and order services
type POSService struct {
	log      logger.Logger
	sessions SessionServicer
	orders   OrderServicer

	mu      sync.Mutex
	tickets map[string]*Ticket
}

// NewPOSService creates a new POSService
func NewPOSService(log logger.Logger, sessions SessionServicer, orders OrderServicer) *POSService {
	return &POSService{
		log:      log,
		sessions: sessions,
		orders:   orders,
		tickets:  make(map[string]*Ticket),
	}
}

// viewOf snapshots a ticket so it can be encoded outside the lock
func viewOf(t *Ticket) *TicketView {
	snap := *t
	snap.Persons = make([]*Person, len(t.Persons))
	for i, p := range t.Persons {
		cp := *p
		cp.Lines = append([]customizer.CartLineItem{}, p.Lines...)
		snap.Persons[i] = &cp
	}
	return &TicketView{Ticket: &snap, Total: t.Total()}
}

// OpenTicket starts a ticket with one person
func (s *POSService) OpenTicket(ctx context.Context, restaurantID, tableNumber string) (*TicketView, error) {
	if restaurantID == "" {
		return nil, errors.InvalidInput("restaurant is required")
	}
	t := &Ticket{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		TableNumber:  tableNumber,
		Persons:      []*Person{{Name: "Personne 1"}},
	}
	s.mu.Lock()
	s.tickets[t.ID] = t
	s.mu.Unlock()
	return viewOf(t), nil
}

func (s *POSService) ticket(id string) (*Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return t, nil
}

// GetTicket returns a ticket
func (s *POSService) GetTicket(ctx context.Context, id string) (*TicketView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.ticket(id)
	if err != nil {
		return nil, err
	}
	return viewOf(t), nil
}

// AddPerson adds a guest and makes them active
func (s *POSService) AddPerson(ctx context.Context, ticketID, name string) (*TicketView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.ticket(ticketID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = fmt.Sprintf("Personne %d", len(t.Persons)+1)
	}
	t.Persons = append(t.Persons, &Person{Name: name})
	t.Active = len(t.Persons) - 1
	return viewOf(t), nil
}

// SwitchPerson changes the active guest. Each guest keeps their own session.
func (s *POSService) SwitchPerson(ctx context.Context, ticketID string, index int) (*TicketView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.ticket(ticketID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(t.Persons) {
		return nil, ErrPersonNotFound
	}
	t.Active = index
	return viewOf(t), nil
}

// activePerson returns the ticket and its active person under s.mu
func (s *POSService) activePerson(ticketID string) (*Ticket, *Person, error) {
	t, err := s.ticket(ticketID)
	if err != nil {
		return nil, nil, err
	}
	return t, t.Persons[t.Active], nil
}

// StartItem opens a customization of a product for the active person,
// replacing any item they had in progress
func (s *POSService) StartItem(ctx context.Context, ticketID, productID, locale string) (*SessionView, error) {
	s.mu.Lock()
	t, p, err := s.activePerson(ticketID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	previous := p.SessionID
	s.mu.Unlock()

	view, err := s.sessions.Open(ctx, t.RestaurantID, productID, locale)
	if err != nil {
		return nil, err
	}
	if previous != "" {
		s.discardSession(ctx, previous)
	}

	s.mu.Lock()
	p.SessionID = view.ID
	s.mu.Unlock()
	return view, nil
}

// discardSession drops a session the ticket no longer needs. A session the
// sweeper already collected is not worth a warning.
func (s *POSService) discardSession(ctx context.Context, id string) {
	if err := s.sessions.Cancel(ctx, id); err != nil {
		if err == ErrSessionNotFound {
			s.log.Debug("Session already gone", "session_id", id)
			return
		}
		s.log.Warn("Failed to discard session", "session_id", id, "error", err)
	}
}

// sessionOf returns the in-progress session id of the active person
func (s *POSService) sessionOf(ticketID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, p, err := s.activePerson(ticketID)
	if err != nil {
		return "", err
	}
	if p.SessionID == "" {
		return "", ErrSessionNotFound
	}
	return p.SessionID, nil
}

// Apply forwards an action to the active person's session
func (s *POSService) Apply(ctx context.Context, ticketID string, a Action) (*SessionView, error) {
	id, err := s.sessionOf(ticketID)
	if err != nil {
		return nil, err
	}
	return s.sessions.Apply(ctx, id, a)
}

// ConfirmItem adds the active person's finished item to the ticket
func (s *POSService) ConfirmItem(ctx context.Context, ticketID string) (*TicketView, error) {
	id, err := s.sessionOf(ticketID)
	if err != nil {
		return nil, err
	}
	var view *TicketView
	_, err = s.sessions.ConfirmInto(ctx, id, func(ctx context.Context, _ string, lines []customizer.CartLineItem) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		t, err := s.ticket(ticketID)
		if err != nil {
			return err
		}
		for _, p := range t.Persons {
			if p.SessionID == id {
				p.Lines = append(p.Lines, lines...)
				p.SessionID = ""
			}
		}
		view = viewOf(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.discardSession(ctx, id)
	return view, nil
}

// RemoveLine drops a confirmed line of a person
func (s *POSService) RemoveLine(ctx context.Context, ticketID string, person, line int) (*TicketView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.ticket(ticketID)
	if err != nil {
		return nil, err
	}
	if person < 0 || person >= len(t.Persons) {
		return nil, ErrPersonNotFound
	}
	p := t.Persons[person]
	if line < 0 || line >= len(p.Lines) {
		return nil, errors.NotFoundf("line %d not found", line)
	}
	p.Lines = append(p.Lines[:line], p.Lines[line+1:]...)
	return viewOf(t), nil
}

// Checkout submits the ticket as a counter order and closes it. The ticket
// leaves the registry for the duration of the submission, so a concurrent
// checkout of the same ticket finds nothing; it is put back if submission fails.
func (s *POSService) Checkout(ctx context.Context, ticketID, customerName string) (*models.Order, error) {
	s.mu.Lock()
	t, err := s.ticket(ticketID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	delete(s.tickets, ticketID)
	order := &models.Order{
		RestaurantID: t.RestaurantID,
		Channel:      models.ChannelPOS,
		CustomerName: customerName,
		TableNumber:  t.TableNumber,
	}
	var pending []string
	for _, p := range t.Persons {
		for _, line := range p.Lines {
			item := models.OrderItemFromLine(line)
			if len(t.Persons) > 1 {
				item.Person = p.Name
			}
			order.Items = append(order.Items, item)
		}
		if p.SessionID != "" {
			pending = append(pending, p.SessionID)
		}
	}
	s.mu.Unlock()

	if err := s.orders.SubmitOrder(ctx, order); err != nil {
		s.mu.Lock()
		s.tickets[ticketID] = t
		s.mu.Unlock()
		return nil, err
	}

	for _, id := range pending {
		s.discardSession(ctx, id)
	}
	s.log.Info("Ticket checked out", "ticket_id", ticketID, "order_id", order.ID, "persons", len(t.Persons))
	return order, nil
}

// CancelTicket discards a ticket and its in-progress sessions
func (s *POSService) CancelTicket(ctx context.Context, ticketID string) error {
	s.mu.Lock()
	t, err := s.ticket(ticketID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.tickets, ticketID)
	s.mu.Unlock()

	for _, p := range t.Persons {
		if p.SessionID != "" {
			s.discardSession(ctx, p.SessionID)
		}
	}
	return nil
}
