package services

import (
	"fmt"

	"delivery_dispatch/internal/models"
	"delivery_dispatch/internal/repository"

	"gorm.io/gorm"
)

// In-memory repository fakes keyed by primary id. Only the behavior the
// services exercise is implemented.

type fakeOrderRepo struct {
	orders    map[uint]*models.Order
	nextID    uint
	createErr error
	updateErr error
	columns   map[uint]map[string]interface{}
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:  map[uint]*models.Order{},
		nextID:  1,
		columns: map[uint]map[string]interface{}{},
	}
}

func (r *fakeOrderRepo) Create(order *models.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, o := range r.orders {
		if o.StripeSessionID == order.StripeSessionID {
			return gorm.ErrDuplicatedKey
		}
	}
	order.ID = r.nextID
	r.nextID++
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) GetByID(id uint) (*models.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) GetByPublicID(publicID string) (*models.Order, error) {
	for _, o := range r.orders {
		if o.PublicID == publicID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) GetByStripeSessionID(sessionID string) (*models.Order, error) {
	for _, o := range r.orders {
		if o.StripeSessionID == sessionID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) GetByHubspotDealID(dealID string) (*models.Order, error) {
	for _, o := range r.orders {
		if o.HubspotDealID == dealID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) GetByDriverID(driverID uint) ([]models.Order, error) {
	var result []models.Order
	for _, o := range r.orders {
		if o.DriverID != nil && *o.DriverID == driverID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (r *fakeOrderRepo) GetByCustomerID(customerID uint) ([]models.Order, error) {
	var result []models.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (r *fakeOrderRepo) GetByStatus(status models.OrderStatus) ([]models.Order, error) {
	var result []models.Order
	for _, o := range r.orders {
		if o.Status == string(status) {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (r *fakeOrderRepo) CountActiveByDriver(driverID uint) (int64, error) {
	var count int64
	for _, o := range r.orders {
		if o.DriverID != nil && *o.DriverID == driverID && o.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *fakeOrderRepo) Update(order *models.Order) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) UpdateColumns(id uint, updates map[string]interface{}) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.columns[id] == nil {
		r.columns[id] = map[string]interface{}{}
	}
	for k, v := range updates {
		r.columns[id][k] = v
		switch k {
		case "hubspot_deal_id":
			o.HubspotDealID = v.(string)
		case "pickup_address":
			o.PickupAddress = v.(string)
		case "dropoff_address":
			o.DropoffAddress = v.(string)
		}
	}
	return nil
}

func (r *fakeOrderRepo) GetAll() ([]models.Order, error) {
	var result []models.Order
	for _, o := range r.orders {
		result = append(result, *o)
	}
	return result, nil
}

type fakeQuoteRepo struct {
	quotes map[uint]*models.Quote
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{quotes: map[uint]*models.Quote{}}
}

func (r *fakeQuoteRepo) Create(quote *models.Quote) error {
	quote.ID = uint(len(r.quotes) + 1)
	copied := *quote
	r.quotes[quote.ID] = &copied
	return nil
}

func (r *fakeQuoteRepo) GetByID(id uint) (*models.Quote, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *q
	return &copied, nil
}

func (r *fakeQuoteRepo) GetByPublicID(publicID string) (*models.Quote, error) {
	for _, q := range r.quotes {
		if q.PublicID == publicID {
			copied := *q
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQuoteRepo) GetByCustomerID(customerID uint) ([]models.Quote, error) {
	var result []models.Quote
	for _, q := range r.quotes {
		if q.CustomerID == customerID {
			result = append(result, *q)
		}
	}
	return result, nil
}

func (r *fakeQuoteRepo) Update(quote *models.Quote) error {
	if _, ok := r.quotes[quote.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *quote
	r.quotes[quote.ID] = &copied
	return nil
}

type fakeCustomerRepo struct {
	customers map[uint]*models.Customer
	columns   map[uint]map[string]interface{}
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		customers: map[uint]*models.Customer{},
		columns:   map[uint]map[string]interface{}{},
	}
}

func (r *fakeCustomerRepo) Create(customer *models.Customer) error {
	customer.ID = uint(len(r.customers) + 1)
	copied := *customer
	r.customers[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) GetByID(id uint) (*models.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCustomerRepo) GetByEmail(email string) (*models.Customer, error) {
	for _, c := range r.customers {
		if c.Email == models.NormalizeEmail(email) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) GetByHubspotContactID(contactID string) (*models.Customer, error) {
	for _, c := range r.customers {
		if c.HubspotContactID == contactID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) UpsertByEmail(customer *models.Customer) error {
	existing, err := r.GetByEmail(customer.Email)
	if err == nil {
		*customer = *existing
		return nil
	}
	return r.Create(customer)
}

func (r *fakeCustomerRepo) Update(customer *models.Customer) error {
	if _, ok := r.customers[customer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *customer
	r.customers[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) UpdateColumns(id uint, updates map[string]interface{}) error {
	c, ok := r.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.columns[id] == nil {
		r.columns[id] = map[string]interface{}{}
	}
	for k, v := range updates {
		r.columns[id][k] = v
		switch k {
		case "hubspot_contact_id":
			c.HubspotContactID = v.(string)
		case "name":
			c.Name = v.(string)
		case "phone":
			c.Phone = v.(string)
		}
	}
	return nil
}

type fakeDriverRepo struct {
	drivers map[uint]*models.Driver
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{drivers: map[uint]*models.Driver{}}
}

func (r *fakeDriverRepo) Create(driver *models.Driver) error {
	driver.ID = uint(len(r.drivers) + 1)
	copied := *driver
	r.drivers[driver.ID] = &copied
	return nil
}

func (r *fakeDriverRepo) GetByID(id uint) (*models.Driver, error) {
	d, ok := r.drivers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDriverRepo) GetByUserID(userID uint) (*models.Driver, error) {
	for _, d := range r.drivers {
		if d.UserID != nil && *d.UserID == userID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDriverRepo) GetAll() ([]models.Driver, error) {
	var result []models.Driver
	for _, d := range r.drivers {
		result = append(result, *d)
	}
	return result, nil
}

func (r *fakeDriverRepo) Update(driver *models.Driver) error {
	if _, ok := r.drivers[driver.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *driver
	r.drivers[driver.ID] = &copied
	return nil
}

// fakeEventRepo enforces the (source, event_id) unique constraint the way
// the real table does.
type fakeEventRepo struct {
	events []models.DispatchEvent
}

func (r *fakeEventRepo) Create(event *models.DispatchEvent) error {
	for _, e := range r.events {
		if e.Source == event.Source && e.EventID == event.EventID {
			return repository.ErrDuplicateEvent
		}
	}
	event.ID = uint(len(r.events) + 1)
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) GetByOrderID(orderID uint) ([]models.DispatchEvent, error) {
	var result []models.DispatchEvent
	for _, e := range r.events {
		if e.OrderID != nil && *e.OrderID == orderID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *fakeEventRepo) byType(eventType string) []models.DispatchEvent {
	var result []models.DispatchEvent
	for _, e := range r.events {
		if e.EventType == eventType {
			result = append(result, e)
		}
	}
	return result
}

type fakeNotifier struct {
	payments  int
	assigns   int
	statuses  int
	returnErr error
}

func (n *fakeNotifier) NotifyPaymentConfirmed(*models.Order, *models.Customer) error {
	n.payments++
	return n.returnErr
}

func (n *fakeNotifier) NotifyDriverAssigned(*models.Order, *models.Driver) error {
	n.assigns++
	return n.returnErr
}

func (n *fakeNotifier) NotifyStatusChanged(*models.Order, string) error {
	n.statuses++
	return n.returnErr
}

type fakeSyncer struct {
	calls  int
	result SyncResult
	panics bool
}

func (s *fakeSyncer) SyncOrder(order *models.Order) SyncResult {
	s.calls++
	if s.panics {
		panic(fmt.Sprintf("sync panic for order %d", order.ID))
	}
	return s.result
}
