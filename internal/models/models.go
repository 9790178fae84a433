// Package models defines the domain entities persisted by the bot.
package models

import (
	"database/sql"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusAccepted   OrderStatus = "accepted"
	StatusPreparing  OrderStatus = "preparing"
	StatusInDelivery OrderStatus = "in_delivery"
	StatusCompleted  OrderStatus = "completed"
)

// Label returns the user-facing Russian label for a status.
func (s OrderStatus) Label() string {
	switch s {
	case StatusAccepted:
		return "принят"
	case StatusPreparing:
		return "готовится"
	case StatusInDelivery:
		return "в доставке"
	case StatusCompleted:
		return "завершен"
	}
	return string(s)
}

// ActiveStatuses lists the statuses staff consider open.
var ActiveStatuses = []OrderStatus{StatusAccepted, StatusPreparing, StatusInDelivery}

// User is a Telegram user known to the bot. Created on first contact,
// never deleted.
type User struct {
	ID               int64          `db:"user_id"`
	Username         sql.NullString `db:"username"`
	FullName         string         `db:"full_name"`
	DietPreferences  sql.NullString `db:"diet_preferences"`
	RegistrationDate time.Time      `db:"registration_date"`
}

// Dish is a menu item. Tags is free comma-separated text.
type Dish struct {
	ID          int64          `db:"dish_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Calories    int            `db:"calories"`
	Price       int            `db:"price"`
	Photo       sql.NullString `db:"photo"`
	Tags        sql.NullString `db:"tags"`
	Rating      float64        `db:"rating"`
	Votes       int            `db:"votes"`
}

// NewDish carries the fields collected when an administrator adds a dish.
type NewDish struct {
	Name        string
	Description string
	Price       int
	Calories    int
	Tags        string
	Photo       string
}

// CartLine is one dish in a user's cart joined with live menu data.
type CartLine struct {
	DishID   int64  `db:"dish_id"`
	Name     string `db:"name"`
	Price    int    `db:"price"`
	Quantity int    `db:"quantity"`
	Calories int    `db:"calories"`
}

// Total returns price times quantity for the line.
func (l CartLine) Total() int {
	return l.Price * l.Quantity
}

// Order is an immutable cart snapshot; only Status mutates afterwards.
type Order struct {
	ID          int64       `db:"order_id"`
	UserID      int64       `db:"user_id"`
	OrderDate   time.Time   `db:"order_date"`
	TotalAmount int         `db:"total_amount"`
	Status      OrderStatus `db:"status"`
	// CustomerName is populated on joined reads only.
	CustomerName string `db:"customer_name"`
}

// OrderLine is one dish within an order; Price is the unit price copied
// at checkout time.
type OrderLine struct {
	DishID   int64  `db:"dish_id"`
	Name     string `db:"name"`
	Quantity int    `db:"quantity"`
	Price    int    `db:"price"`
}

// Total returns price-at-purchase times quantity.
func (l OrderLine) Total() int {
	return l.Price * l.Quantity
}

// OrderDetails is an order with its lines and the customer's name.
type OrderDetails struct {
	Order Order
	Lines []OrderLine
}

// Delivery holds the fields collected by the delivery conversation.
type Delivery struct {
	Address string
	Time    string
	Contact string
}
