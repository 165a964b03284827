package service

import (
	"context"
	"earnings-tracker/config"
	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/model"
	"earnings-tracker/pkg/utils"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.BcryptCost = 4
	cfg.Cache.DefaultExpiration = time.Minute
	cfg.Enrichment.MaxConcurrency = 2
	cfg.Enrichment.SymbolSuffix = ".AX"
	return cfg
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeEarningsRepo struct {
	mu         sync.Mutex
	nextID     uint
	records    map[uint]model.Earnings
	countCalls int
	updateErr  map[uint]error
}

func newFakeEarningsRepo(records ...model.Earnings) *fakeEarningsRepo {
	r := &fakeEarningsRepo{records: map[uint]model.Earnings{}, updateErr: map[uint]error{}}
	for _, rec := range records {
		rec := rec
		_ = r.Create(context.Background(), &rec)
	}
	return r
}

func (r *fakeEarningsRepo) Create(_ context.Context, e *model.Earnings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if e.ID == 0 {
		e.ID = r.nextID
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	r.records[e.ID] = *e
	return nil
}

func (r *fakeEarningsRepo) all() []model.Earnings {
	out := make([]model.Earnings, 0, len(r.records))
	for _, e := range r.records {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *fakeEarningsRepo) FindAll(_ context.Context, _ ...utils.DBOption) ([]model.Earnings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.all(), nil
}

func (r *fakeEarningsRepo) FindByID(_ context.Context, id uint) (*model.Earnings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *fakeEarningsRepo) FindByStockName(_ context.Context, substring string) ([]model.Earnings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Earnings
	for _, e := range r.all() {
		if strings.Contains(e.StockName, substring) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEarningsRepo) FindMissingSnapshots(_ context.Context) ([]model.Earnings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Earnings
	for _, e := range r.all() {
		if e.MissingPriorPrice() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEarningsRepo) Update(_ context.Context, id uint, fields dto.EarningsFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[id]; err != nil {
		return err
	}
	e, ok := r.records[id]
	if !ok {
		return dto.ErrNotFound
	}
	fields.Apply(&e)
	e.UpdatedAt = time.Now()
	r.records[id] = e
	return nil
}

func (r *fakeEarningsRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return dto.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeEarningsRepo) Exists(_ context.Context, stockName string, earningsDate time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.records {
		if e.StockName == stockName && e.Date().Equal(utils.TruncateDate(earningsDate)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEarningsRepo) UpdateByStockAndDate(_ context.Context, stockName string, earningsDate time.Time, fields dto.EarningsFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fields.StockName, fields.EarningsDate = nil, nil
	for id, e := range r.records {
		if e.StockName == stockName && e.Date().Equal(utils.TruncateDate(earningsDate)) {
			fields.Apply(&e)
			r.records[id] = e
		}
	}
	return nil
}

func (r *fakeEarningsRepo) StockCount(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countCalls++
	names := map[string]struct{}{}
	for _, e := range r.records {
		names[e.StockName] = struct{}{}
	}
	return int64(len(names)), nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]model.User{}}
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ExistsByRole(_ context.Context, role string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: duplicate email", dto.ErrConflict)
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Save(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return dto.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) admins() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.Role == model.RoleAdmin {
			n++
		}
	}
	return n
}

type fakeYahooRepo struct {
	mu      sync.Mutex
	history map[string][]dto.DailyClose
	errs    map[string]error
	params  []dto.GetStockHistoryParam
}

func (r *fakeYahooRepo) GetDailyCloses(_ context.Context, param dto.GetStockHistoryParam) ([]dto.DailyClose, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = append(r.params, param)
	if err := r.errs[param.Symbol]; err != nil {
		return nil, err
	}
	return r.history[param.Symbol], nil
}

type fakeSigner struct{}

func (fakeSigner) Sign(userID uint, email, role string) (string, error) {
	return fmt.Sprintf("%d|%s|%s", userID, email, role), nil
}
