package types

import "time"

// Records of the ERP domain resources. The shell only moves them between the
// backend and the modules; validation is superficial.

type Company struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name" validate:"required,max=128"`
	TradeName   string  `json:"tradeName,omitempty" validate:"max=128"`
	Document    string  `json:"document" validate:"required,document"`
	Email       string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string  `json:"phone,omitempty" validate:"max=20"`
	Address     Address `json:"address"`
	LogoURL     string  `json:"logoUrl,omitempty"`
	Description string  `json:"description,omitempty" validate:"max=2048"`
}

type Range struct {
	ID          string `json:"id,omitempty"`
	Code        string `json:"code" validate:"required,max=16"`
	Description string `json:"description" validate:"required,max=256"`
}

type MaterialGroup struct {
	ID          string `json:"id,omitempty"`
	Code        string `json:"code" validate:"required,max=16"`
	Description string `json:"description" validate:"required,max=256"`
	RangeID     string `json:"rangeId,omitempty"`
}

type Material struct {
	ID          string  `json:"id,omitempty"`
	Code        string  `json:"code" validate:"required,max=32"`
	Description string  `json:"description" validate:"required,max=256"`
	Unit        string  `json:"unit" validate:"required,max=8"`
	GroupID     string  `json:"groupId" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Active      bool    `json:"active"`
}

type Supplier struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name" validate:"required,max=128"`
	Document  string    `json:"document" validate:"required,document"`
	Email     string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string    `json:"phone,omitempty" validate:"max=20"`
	Addresses []Address `json:"addresses,omitempty" validate:"dive"`
	Contacts  []Contact `json:"contacts,omitempty" validate:"dive"`
}

type Address struct {
	ID           string `json:"id,omitempty"`
	Street       string `json:"street,omitempty" validate:"max=256"`
	Number       string `json:"number,omitempty" validate:"max=16"`
	Complement   string `json:"complement,omitempty" validate:"max=128"`
	Neighborhood string `json:"neighborhood,omitempty" validate:"max=128"`
	City         string `json:"city,omitempty" validate:"max=128"`
	State        string `json:"state,omitempty" validate:"omitempty,len=2"`
	PostalCode   string `json:"postalCode,omitempty" validate:"omitempty,postalcode"`
}

type Contact struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name" validate:"required,max=128"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"max=20"`
	Role  string `json:"role,omitempty" validate:"max=64"`
}

type Deposit struct {
	ID          string `json:"id,omitempty"`
	Code        string `json:"code" validate:"required,max=16"`
	Description string `json:"description" validate:"required,max=256"`
	Active      bool   `json:"active"`
}

type Position struct {
	ID          string `json:"id,omitempty"`
	DepositID   string `json:"depositId" validate:"required"`
	Code        string `json:"code" validate:"required,max=32"`
	Description string `json:"description,omitempty" validate:"max=256"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
}

// UserAccount is a user as managed by the users module, unlike User which is
// the logged-in identity.
type UserAccount struct {
	ID       string `json:"id,omitempty"`
	Login    string `json:"login" validate:"required,login"`
	Name     string `json:"name" validate:"required,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,max=32"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6,max=128"`
	Active   bool   `json:"active"`
}

type LogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity,omitempty"`
	EntityID  string    `json:"entityId,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
