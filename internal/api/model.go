package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Price tolerates the backend serializing prices either as JSON numbers
// or as quoted strings ("100").
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*p = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", s, err)
		}
		*p = Price(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

type Store struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Owner       string  `json:"owner"`
	Username    string  `json:"username"`
	Category    string  `json:"category"`
	IsActive    bool    `json:"isActive"`
	LocationLat float64 `json:"locationLat"`
	LocationLng float64 `json:"locationLng"`
	Token       string  `json:"token,omitempty"`
}

// StorePatch carries only the fields being changed; nil fields are
// omitted from the request body.
type StorePatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Email       *string  `json:"email,omitempty"`
	Owner       *string  `json:"owner,omitempty"`
	Username    *string  `json:"username,omitempty"`
	Password    *string  `json:"password,omitempty"`
	Category    *string  `json:"category,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
	LocationLat *float64 `json:"locationLat,omitempty"`
	LocationLng *float64 `json:"locationLng,omitempty"`
}

func (p StorePatch) IsEmpty() bool {
	return p == StorePatch{}
}

type Product struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Store       string `json:"store"`
}

type ProductInput struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Store       string `json:"store"`
}

// RegisterStoreInput is the payload for creating a new store account.
type RegisterStoreInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Category    string `json:"category"`
	Image       string `json:"image,omitempty"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

type StoreRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type UserRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

type ProductRef struct {
	ID string `json:"_id"`
}

type OrderLine struct {
	Product  ProductRef `json:"productId"`
	Quantity int        `json:"quantity"`
}

type OrderRecord struct {
	OrderID   string      `json:"orderId"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	Store     StoreRef    `json:"storeId"`
	User      UserRef     `json:"userId"`
	Products  []OrderLine `json:"products"`
}

type CheckUsernameResponse struct {
	Success bool   `json:"success"`
	Store   *Store `json:"store,omitempty"`
	Error   string `json:"error,omitempty"`
}

type VerifyPasswordResponse struct {
	PasswordMatches bool   `json:"passwordMatches"`
	Store           *Store `json:"store,omitempty"`
	Error           string `json:"error,omitempty"`
}
