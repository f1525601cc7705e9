package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/repository"
	"github.com/Dan9191/finance-tracker/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// memStore is an in-memory Store. err, when set, is returned by every call.
type memStore struct {
	mu           sync.Mutex
	err          error
	nextID       int64
	users        map[int64]*models.User
	categories   map[int64]*models.Category
	transactions map[int64]*models.Transaction
	profileCalls [][]repository.FieldChange
	deleteCalls  int
	// raced drops a category right before it is written, as a concurrent delete would
	raced bool
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[int64]*models.User{},
		categories:   map[int64]*models.Category{},
		transactions: map[int64]*models.Transaction{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = m.id()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *u
	return &found, nil
}

func (m *memStore) UpdateUserProfile(_ context.Context, id int64, changes []repository.FieldChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.profileCalls = append(m.profileCalls, changes)
	for _, c := range changes {
		switch c.Column {
		case "age":
			if c.Value == nil {
				u.Age = nil
			} else {
				age := c.Value.(int)
				u.Age = &age
			}
		case "occupation":
			if c.Value == nil {
				u.Occupation = nil
			} else {
				occupation := c.Value.(string)
				u.Occupation = &occupation
			}
		case "first_name":
			if c.Value == nil {
				u.FirstName = nil
			} else {
				name := c.Value.(string)
				u.FirstName = &name
			}
		}
	}
	return nil
}

func (m *memStore) SetProfilePicture(_ context.Context, id int64, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ProfilePictureURL = &url
	return nil
}

func (m *memStore) ListActiveUsers(_ context.Context, from, to time.Time) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var users []models.User
	for _, u := range m.users {
		for _, t := range m.transactions {
			if t.UserID == u.ID && !t.Date.Before(from) && t.Date.Before(to) {
				users = append(users, *u)
				break
			}
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *memStore) ListCategories(_ context.Context, userID int64) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Category{}
	for _, c := range m.categories {
		if c.IsDefault || (c.UserID != nil && *c.UserID == userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *memStore) FindCategory(_ context.Context, id, userID int64) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.categories[id]
	if !ok || !(c.IsDefault || (c.UserID != nil && *c.UserID == userID)) {
		return nil, repository.ErrNotFound
	}
	found := *c
	return &found, nil
}

func (m *memStore) clash(c *models.Category) bool {
	for _, other := range m.categories {
		if other.ID == c.ID || !strings.EqualFold(other.Name, c.Name) || other.Type != c.Type {
			continue
		}
		if other.IsDefault || (other.UserID != nil && c.UserID != nil && *other.UserID == *c.UserID) {
			return true
		}
	}
	return false
}

func (m *memStore) CreateCategory(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.clash(c) {
		return repository.ErrDuplicate
	}
	c.ID = m.id()
	stored := *c
	m.categories[c.ID] = &stored
	return nil
}

func (m *memStore) UpdateCategory(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.raced {
		delete(m.categories, c.ID)
	}
	if _, ok := m.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.clash(c) {
		return repository.ErrDuplicate
	}
	stored := *c
	m.categories[c.ID] = &stored
	return nil
}

func (m *memStore) CountCategoryUsage(_ context.Context, userID int64, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, t := range m.transactions {
		if t.UserID == userID && strings.EqualFold(t.Category, name) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteCategory(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.err != nil {
		return m.err
	}
	if m.raced {
		delete(m.categories, id)
	}
	if _, ok := m.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *memStore) filtered(userID int64, f models.TransactionFilter) []models.Transaction {
	out := []models.Transaction{}
	for _, t := range m.transactions {
		if t.UserID != userID {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memStore) ListTransactions(_ context.Context, userID int64, f models.TransactionFilter, limit, offset int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	all := m.filtered(userID, f)
	if offset >= len(all) {
		return []models.Transaction{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) CountTransactions(_ context.Context, userID int64, f models.TransactionFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return len(m.filtered(userID, f)), nil
}

func (m *memStore) ExportTransactions(_ context.Context, userID int64, f models.TransactionFilter) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.filtered(userID, f), nil
}

func (m *memStore) TransactionsBetween(_ context.Context, userID int64, from, to time.Time) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Transaction{}
	for _, t := range m.filtered(userID, models.TransactionFilter{}) {
		if !t.Date.Before(from) && t.Date.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) GetTransaction(_ context.Context, id, userID int64) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	found := *t
	return &found, nil
}

func (m *memStore) CreateTransaction(_ context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	t.ID = m.id()
	stored := *t
	m.transactions[t.ID] = &stored
	return nil
}

func (m *memStore) UpdateTransaction(_ context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	existing, ok := m.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return repository.ErrNotFound
	}
	stored := *t
	m.transactions[t.ID] = &stored
	return nil
}

func (m *memStore) DeleteTransaction(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *memStore) inPeriod(t models.Transaction, p repository.Period) bool {
	from, to, ok := p.Bounds()
	return !ok || (!t.Date.Before(from) && t.Date.Before(to))
}

func (m *memStore) TypeTotals(_ context.Context, userID int64, p repository.Period) ([]models.TypeStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	byType := map[string]*models.TypeStat{}
	for _, t := range m.filtered(userID, models.TransactionFilter{}) {
		if !m.inPeriod(t, p) {
			continue
		}
		st, ok := byType[t.Type]
		if !ok {
			st = &models.TypeStat{Type: t.Type}
			byType[t.Type] = st
		}
		st.Total = st.Total.Add(t.Amount)
		st.Count++
	}
	var out []models.TypeStat
	for _, st := range byType {
		out = append(out, *st)
	}
	return out, nil
}

func (m *memStore) ExpenseCategoryTotals(_ context.Context, userID int64, p repository.Period) ([]models.CategoryStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	byCategory := map[string]*models.CategoryStat{}
	for _, t := range m.filtered(userID, models.TransactionFilter{Type: models.TypeExpense}) {
		if !m.inPeriod(t, p) {
			continue
		}
		st, ok := byCategory[t.Category]
		if !ok {
			st = &models.CategoryStat{Category: t.Category}
			byCategory[t.Category] = st
		}
		st.Total = st.Total.Add(t.Amount)
		st.Count++
	}
	var out []models.CategoryStat
	for _, st := range byCategory {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, nil
}

func (m *memStore) MonthlyTypeTotals(_ context.Context, userID int64, year int) ([]models.MonthTypeTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	type key struct {
		month int
		typ   string
	}
	sums := map[key]decimal.Decimal{}
	for _, t := range m.filtered(userID, models.TransactionFilter{}) {
		if t.Date.Year() != year {
			continue
		}
		k := key{int(t.Date.Month()), t.Type}
		sums[k] = sums[k].Add(t.Amount)
	}
	var out []models.MonthTypeTotal
	for k, total := range sums {
		out = append(out, models.MonthTypeTotal{Month: k.month, Type: k.typ, Total: total})
	}
	return out, nil
}

func (m *memStore) ListCountries(_ context.Context) ([]models.Country, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.Country{{ID: 1, Name: "Colombia", Code: "CO"}}, nil
}

func (m *memStore) ListCities(_ context.Context, countryID int64) ([]models.City, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.City{{ID: 1, CountryID: countryID, Name: "Bogotá"}}, nil
}

func (m *memStore) ListNeighborhoods(_ context.Context, cityID int64) ([]models.Neighborhood, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.Neighborhood{{ID: 1, CityID: cityID, Name: "Chapinero"}}, nil
}

// addTransaction stores a transaction directly
func (m *memStore) addTransaction(userID int64, amount, typ, category, day string) *models.Transaction {
	date, err := models.ParseDate(day)
	if err != nil {
		panic(err)
	}
	t := &models.Transaction{
		UserID:   userID,
		Amount:   decimal.RequireFromString(amount),
		Type:     typ,
		Category: category,
		Date:     date,
	}
	_ = m.CreateTransaction(context.Background(), t)
	return t
}

// addCategory stores a category directly; a nil owner makes it a default
func (m *memStore) addCategory(owner *int64, name, typ string) *models.Category {
	c := &models.Category{UserID: owner, Name: name, Type: typ, Color: "#112233", Icon: "tag", IsDefault: owner == nil}
	m.mu.Lock()
	c.ID = m.id()
	stored := *c
	m.categories[c.ID] = &stored
	m.mu.Unlock()
	return c
}

var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := newMemStore()
	svc := NewService(store, logger, utils.NewTokenIssuer("test-secret", 7*24*time.Hour))
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func ptr[T any](v T) *T { return &v }
