package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store with transactional rollback and fault injection
// ---------------------------------------------------------------------------

var errInjected = errors.New("injected failure")

type memData struct {
	users      map[int64]domain.User
	workspaces map[int64]domain.Workspace
	managers   []domain.WorkspaceManager
	zones      map[int64]domain.Zone
	places     map[int64]domain.Place
	bookings   map[int64]domain.Booking
	nextID     int64
}

func (d *memData) clone() *memData {
	c := &memData{
		users:      make(map[int64]domain.User, len(d.users)),
		workspaces: make(map[int64]domain.Workspace, len(d.workspaces)),
		managers:   append([]domain.WorkspaceManager(nil), d.managers...),
		zones:      make(map[int64]domain.Zone, len(d.zones)),
		places:     make(map[int64]domain.Place, len(d.places)),
		bookings:   make(map[int64]domain.Booking, len(d.bookings)),
		nextID:     d.nextID,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.workspaces {
		c.workspaces[k] = v
	}
	for k, v := range d.zones {
		c.zones[k] = v
	}
	for k, v := range d.places {
		c.places[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	return c
}

type memStore struct {
	data *memData
	// fail maps an operation name (e.g. "workspaces.delete") to the error it returns.
	fail map[string]error
	txs  []ports.TxOptions
}

func newMemStore() *memStore {
	return &memStore{
		data: (&memData{}).clone(),
		fail: map[string]error{},
	}
}

func (s *memStore) check(op string) error {
	if err, ok := s.fail[op]; ok {
		return err
	}
	return nil
}

func (s *memStore) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

func (s *memStore) Users() ports.UserRepository           { return memUsers{s} }
func (s *memStore) Workspaces() ports.WorkspaceRepository { return memWorkspaces{s} }
func (s *memStore) Managers() ports.ManagerRepository     { return memManagers{s} }
func (s *memStore) Zones() ports.ZoneRepository           { return memZones{s} }
func (s *memStore) Places() ports.PlaceRepository         { return memPlaces{s} }
func (s *memStore) Bookings() ports.BookingRepository     { return memBookings{s} }

func (s *memStore) InTx(ctx context.Context, opts ports.TxOptions, fn func(context.Context, ports.Store) error) error {
	s.txs = append(s.txs, opts)
	snapshot := s.data.clone()
	if err := fn(ctx, s); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *domain.User) error {
	if err := r.s.check("users.create"); err != nil {
		return err
	}
	for _, existing := range r.s.data.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
		if u.TelegramID != nil && existing.TelegramID != nil && *existing.TelegramID == *u.TelegramID {
			return domain.ErrTelegramLinked
		}
	}
	u.ID = r.s.id()
	r.s.data.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) GetByTelegramID(_ context.Context, telegramID string) (*domain.User, error) {
	for _, u := range r.s.data.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) Update(_ context.Context, u *domain.User) error {
	if err := r.s.check("users.update"); err != nil {
		return err
	}
	if _, ok := r.s.data.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r memUsers) List(_ context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	q := strings.ToLower(f.Query)
	var out []*domain.User
	for _, u := range r.s.data.users {
		if q != "" && !strings.Contains(strings.ToLower(u.Email+" "+u.FirstName+" "+u.LastName), q) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Banned != nil && u.Banned != *f.Banned {
			continue
		}
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, f.Offset, f.Limit), int64(len(out)), nil
}

// --- workspaces ---

type memWorkspaces struct{ s *memStore }

func (r memWorkspaces) Create(_ context.Context, w *domain.Workspace) error {
	w.ID = r.s.id()
	r.s.data.workspaces[w.ID] = *w
	return nil
}

func (r memWorkspaces) GetByID(_ context.Context, id int64) (*domain.Workspace, error) {
	w, ok := r.s.data.workspaces[id]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	return &w, nil
}

func (r memWorkspaces) List(ctx context.Context, f ports.WorkspaceFilter) ([]*domain.Workspace, int64, error) {
	var out []*domain.Workspace
	for _, w := range r.s.data.workspaces {
		if f.OwnerID != 0 && w.OwnerID != f.OwnerID {
			continue
		}
		if f.MemberID != 0 && w.OwnerID != f.MemberID {
			if ok, _ := (memManagers{r.s}).IsManager(ctx, w.ID, f.MemberID); !ok {
				continue
			}
		}
		if f.Approved != nil && w.Approved != *f.Approved {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(w.Name), strings.ToLower(f.Query)) {
			continue
		}
		w := w
		out = append(out, &w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, f.Offset, f.Limit), int64(len(out)), nil
}

func (r memWorkspaces) Update(_ context.Context, w *domain.Workspace) error {
	if _, ok := r.s.data.workspaces[w.ID]; !ok {
		return domain.ErrWorkspaceNotFound
	}
	r.s.data.workspaces[w.ID] = *w
	return nil
}

func (r memWorkspaces) SetApproved(_ context.Context, id int64, approved bool) error {
	w, ok := r.s.data.workspaces[id]
	if !ok {
		return domain.ErrWorkspaceNotFound
	}
	w.Approved = approved
	r.s.data.workspaces[id] = w
	return nil
}

func (r memWorkspaces) Delete(_ context.Context, id int64) error {
	if err := r.s.check("workspaces.delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.workspaces[id]; !ok {
		return domain.ErrWorkspaceNotFound
	}
	delete(r.s.data.workspaces, id)
	return nil
}

// --- managers ---

type memManagers struct{ s *memStore }

func (r memManagers) Add(_ context.Context, m *domain.WorkspaceManager) error {
	if err := r.s.check("managers.add"); err != nil {
		return err
	}
	for _, l := range r.s.data.managers {
		if l.WorkspaceID == m.WorkspaceID && l.ManagerID == m.ManagerID && l.Active() {
			return domain.ErrManagerExists
		}
	}
	r.s.data.managers = append(r.s.data.managers, *m)
	return nil
}

func (r memManagers) IsManager(_ context.Context, workspaceID, userID int64) (bool, error) {
	for _, l := range r.s.data.managers {
		if l.WorkspaceID == workspaceID && l.ManagerID == userID && l.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (r memManagers) ListManagers(_ context.Context, workspaceID int64) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, l := range r.s.data.managers {
		if l.WorkspaceID != workspaceID || !l.Active() {
			continue
		}
		if u, ok := r.s.data.users[l.ManagerID]; ok {
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r memManagers) SoftDelete(_ context.Context, workspaceID, managerID int64) error {
	for i, l := range r.s.data.managers {
		if l.WorkspaceID == workspaceID && l.ManagerID == managerID && l.Active() {
			now := time.Now().UTC()
			r.s.data.managers[i].DeletedAt = &now
			return nil
		}
	}
	return domain.ErrManagerNotFound
}

func (r memManagers) DeleteByWorkspace(_ context.Context, workspaceID int64) error {
	if err := r.s.check("managers.deleteByWorkspace"); err != nil {
		return err
	}
	kept := r.s.data.managers[:0:0]
	for _, l := range r.s.data.managers {
		if l.WorkspaceID != workspaceID {
			kept = append(kept, l)
		}
	}
	r.s.data.managers = kept
	return nil
}

// --- zones ---

type memZones struct{ s *memStore }

func (r memZones) Create(_ context.Context, z *domain.Zone) error {
	z.ID = r.s.id()
	r.s.data.zones[z.ID] = *z
	return nil
}

func (r memZones) GetByID(_ context.Context, id int64) (*domain.Zone, error) {
	z, ok := r.s.data.zones[id]
	if !ok {
		return nil, domain.ErrZoneNotFound
	}
	return &z, nil
}

func (r memZones) ListByWorkspace(_ context.Context, workspaceID int64) ([]*domain.Zone, error) {
	out := []*domain.Zone{}
	for _, z := range r.s.data.zones {
		if z.WorkspaceID == workspaceID {
			z := z
			out = append(out, &z)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memZones) Update(_ context.Context, z *domain.Zone) error {
	if _, ok := r.s.data.zones[z.ID]; !ok {
		return domain.ErrZoneNotFound
	}
	r.s.data.zones[z.ID] = *z
	return nil
}

func (r memZones) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.data.zones[id]; !ok {
		return domain.ErrZoneNotFound
	}
	delete(r.s.data.zones, id)
	return nil
}

func (r memZones) DeleteByWorkspace(_ context.Context, workspaceID int64) error {
	for id, z := range r.s.data.zones {
		if z.WorkspaceID == workspaceID {
			delete(r.s.data.zones, id)
		}
	}
	return nil
}

// --- places ---

type memPlaces struct{ s *memStore }

func (r memPlaces) workspaceOf(p domain.Place) int64 {
	if p.ZoneID == nil {
		return 0
	}
	return r.s.data.zones[*p.ZoneID].WorkspaceID
}

func (r memPlaces) Create(_ context.Context, p *domain.Place) error {
	p.ID = r.s.id()
	r.s.data.places[p.ID] = *p
	return nil
}

func (r memPlaces) GetByID(_ context.Context, id int64) (*domain.Place, error) {
	p, ok := r.s.data.places[id]
	if !ok {
		return nil, domain.ErrPlaceNotFound
	}
	return &p, nil
}

func (r memPlaces) List(_ context.Context, f ports.PlaceFilter) ([]*domain.Place, error) {
	var out []*domain.Place
	for _, p := range r.s.data.places {
		if f.ZoneID != nil && (p.ZoneID == nil || *p.ZoneID != *f.ZoneID) {
			continue
		}
		if f.WorkspaceID != 0 && r.workspaceOf(p) != f.WorkspaceID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, f.Offset, f.Limit), nil
}

func (r memPlaces) CountByZone(_ context.Context, zoneID int64) (int, error) {
	n := 0
	for _, p := range r.s.data.places {
		if p.ZoneID != nil && *p.ZoneID == zoneID {
			n++
		}
	}
	return n, nil
}

func (r memPlaces) Update(_ context.Context, p *domain.Place) error {
	if _, ok := r.s.data.places[p.ID]; !ok {
		return domain.ErrPlaceNotFound
	}
	r.s.data.places[p.ID] = *p
	return nil
}

func (r memPlaces) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.data.places[id]; !ok {
		return domain.ErrPlaceNotFound
	}
	delete(r.s.data.places, id)
	return nil
}

func (r memPlaces) DeleteByZone(_ context.Context, zoneID int64) error {
	for id, p := range r.s.data.places {
		if p.ZoneID != nil && *p.ZoneID == zoneID {
			delete(r.s.data.places, id)
		}
	}
	return nil
}

func (r memPlaces) DeleteByWorkspace(_ context.Context, workspaceID int64) error {
	for id, p := range r.s.data.places {
		if r.workspaceOf(p) == workspaceID {
			delete(r.s.data.places, id)
		}
	}
	return nil
}

// --- bookings ---

type memBookings struct{ s *memStore }

func (r memBookings) Create(_ context.Context, b *domain.Booking) error {
	if err := r.s.check("bookings.create"); err != nil {
		return err
	}
	b.ID = r.s.id()
	r.s.data.bookings[b.ID] = *b
	return nil
}

func (r memBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := r.s.data.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (r memBookings) ListBlocking(_ context.Context, placeID int64, from, to time.Time) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range r.s.data.bookings {
		if b.PlaceID == placeID && b.Status.Blocking() && domain.Overlaps(b.StartTime, b.EndTime, from, to) {
			b := b
			out = append(out, &b)
		}
	}
	return out, nil
}

func (r memBookings) List(_ context.Context, f ports.BookingFilter) ([]*domain.Booking, error) {
	places := make(map[int64]bool, len(f.PlaceIDs))
	for _, id := range f.PlaceIDs {
		places[id] = true
	}
	out := []*domain.Booking{}
	for _, b := range r.s.data.bookings {
		if len(places) > 0 && !places[b.PlaceID] {
			continue
		}
		if f.UserID != 0 && b.UserID != f.UserID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.From != nil && !b.EndTime.After(*f.From) {
			continue
		}
		if f.To != nil && !b.StartTime.Before(*f.To) {
			continue
		}
		b := b
		if f.WithUser {
			if u, ok := r.s.data.users[b.UserID]; ok {
				b.User = &u
			}
		}
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return window(out, f.Offset, f.Limit), nil
}

func (r memBookings) Update(_ context.Context, b *domain.Booking) error {
	if _, ok := r.s.data.bookings[b.ID]; !ok {
		return domain.ErrBookingNotFound
	}
	stored := *b
	stored.User = nil
	r.s.data.bookings[b.ID] = stored
	return nil
}

func (r memBookings) deleteWhere(keep func(domain.Booking) bool) {
	for id, b := range r.s.data.bookings {
		if !keep(b) {
			delete(r.s.data.bookings, id)
		}
	}
}

func (r memBookings) DeleteByPlace(_ context.Context, placeID int64) error {
	r.deleteWhere(func(b domain.Booking) bool { return b.PlaceID != placeID })
	return nil
}

func (r memBookings) DeleteByZone(_ context.Context, zoneID int64) error {
	r.deleteWhere(func(b domain.Booking) bool {
		p := r.s.data.places[b.PlaceID]
		return p.ZoneID == nil || *p.ZoneID != zoneID
	})
	return nil
}

func (r memBookings) DeleteByWorkspace(_ context.Context, workspaceID int64) error {
	r.deleteWhere(func(b domain.Booking) bool {
		return (memPlaces{r.s}).workspaceOf(r.s.data.places[b.PlaceID]) != workspaceID
	})
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// seedUser stores a user directly and returns its principal.
func (s *memStore) seedUser(email string, role domain.Role) domain.Principal {
	u := &domain.User{Email: email, Role: role, FirstName: strings.Split(email, "@")[0]}
	_ = (memUsers{s}).Create(context.Background(), u)
	return domain.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (s *memStore) seedWorkspace(ownerID int64) *domain.Workspace {
	w := &domain.Workspace{Name: "Hub", OwnerID: ownerID, Approved: true}
	_ = (memWorkspaces{s}).Create(context.Background(), w)
	return w
}

func (s *memStore) seedManager(workspaceID, userID int64) {
	_ = (memManagers{s}).Add(context.Background(), &domain.WorkspaceManager{WorkspaceID: workspaceID, ManagerID: userID})
}

func (s *memStore) seedZone(workspaceID int64, price float64) *domain.Zone {
	z := &domain.Zone{WorkspaceID: workspaceID, Name: "Open space", PricePerHour: price}
	_ = (memZones{s}).Create(context.Background(), z)
	return z
}

func (s *memStore) seedPlace(zoneID *int64) *domain.Place {
	p := &domain.Place{ZoneID: zoneID, Name: "Desk", Status: domain.PlaceAvailable}
	_ = (memPlaces{s}).Create(context.Background(), p)
	return p
}

func (s *memStore) seedBooking(placeID, userID int64, start, end time.Time, status domain.BookingStatus) *domain.Booking {
	b := &domain.Booking{PlaceID: placeID, UserID: userID, StartTime: start, EndTime: end, Status: status}
	_ = (memBookings{s}).Create(context.Background(), b)
	return b
}
