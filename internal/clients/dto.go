package clients

import "github.com/shopspring/decimal"

// Page mirrors the backend's paged result.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// --- auth ---

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType,omitempty"`
	ExpiresIn    int64    `json:"expiresIn,omitempty"`
	User         UserInfo `json:"user"`
}

// --- catalog ---

type Restaurant struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description,omitempty"`
	Cuisine      string              `json:"cuisine,omitempty"`
	Rating       float64             `json:"rating,omitempty"`
	TotalRatings int                 `json:"totalRatings,omitempty"`
	ImageURL     string              `json:"imageUrl,omitempty"`
	Address      string              `json:"address,omitempty"`
	City         string              `json:"city,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	IsOpen       bool                `json:"isOpen"`
	DeliveryTime string              `json:"deliveryTime,omitempty"`
	MinOrder     decimal.NullDecimal `json:"minOrder"`
	DeliveryFee  decimal.NullDecimal `json:"deliveryFee"`
	CreatedAt    string              `json:"createdAt,omitempty"`
}

type MenuItem struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        string          `json:"imageUrl,omitempty"`
	CategoryID      int64           `json:"categoryId,omitempty"`
	CategoryName    string          `json:"categoryName,omitempty"`
	RestaurantID    int64           `json:"restaurantId"`
	RestaurantName  string          `json:"restaurantName,omitempty"`
	IsAvailable     bool            `json:"isAvailable"`
	IsVeg           bool            `json:"isVeg"`
	IsBestseller    bool            `json:"isBestseller"`
	PreparationTime int             `json:"preparationTime,omitempty"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// --- orders ---

type OrderItemRequest struct {
	MenuItemID          int64  `json:"menuItemId"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

type CreateOrderRequest struct {
	RestaurantID         int64              `json:"restaurantId"`
	DeliveryAddressID    int64              `json:"deliveryAddressId"`
	DeliveryInstructions string             `json:"deliveryInstructions"`
	Items                []OrderItemRequest `json:"items"`
}

type OrderItem struct {
	ID                  int64           `json:"id"`
	MenuItemID          int64           `json:"menuItemId"`
	MenuItemName        string          `json:"menuItemName"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	TotalPrice          decimal.Decimal `json:"totalPrice"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

type OrderPayment struct {
	ID                int64           `json:"id"`
	RazorpayOrderID   string          `json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string          `json:"razorpayPaymentId,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
}

type Order struct {
	ID                    int64           `json:"id"`
	OrderNumber           string          `json:"orderNumber"`
	CustomerID            int64           `json:"customerId,omitempty"`
	CustomerName          string          `json:"customerName,omitempty"`
	RestaurantID          int64           `json:"restaurantId"`
	RestaurantName        string          `json:"restaurantName,omitempty"`
	Items                 []OrderItem     `json:"items"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	DeliveryFee           decimal.Decimal `json:"deliveryFee"`
	Tax                   decimal.Decimal `json:"tax"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	Status                string          `json:"status"`
	DeliveryAddress       string          `json:"deliveryAddress,omitempty"`
	DeliveryInstructions  string          `json:"deliveryInstructions,omitempty"`
	DeliveryPartnerName   string          `json:"deliveryPartnerName,omitempty"`
	Payment               *OrderPayment   `json:"payment,omitempty"`
	EstimatedDeliveryTime string          `json:"estimatedDeliveryTime,omitempty"`
	ActualDeliveryTime    string          `json:"actualDeliveryTime,omitempty"`
	CreatedAt             string          `json:"createdAt,omitempty"`
}

// --- payments ---

type Payment struct {
	ID                int64           `json:"id"`
	OrderID           int64           `json:"orderId"`
	OrderNumber       string          `json:"orderNumber,omitempty"`
	RazorpayOrderID   string          `json:"razorpayOrderId"`
	RazorpayPaymentID string          `json:"razorpayPaymentId,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	PaymentMethod     string          `json:"paymentMethod,omitempty"`
	RazorpayKeyID     string          `json:"razorpayKeyId,omitempty"`
	CustomerName      string          `json:"customerName,omitempty"`
	CustomerEmail     string          `json:"customerEmail,omitempty"`
	CustomerPhone     string          `json:"customerPhone,omitempty"`
}

type VerifyPaymentRequest struct {
	OrderID           int64  `json:"orderId"`
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

// --- addresses ---

type AddressRequest struct {
	Street    string   `json:"street"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Pincode   string   `json:"pincode"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Type      string   `json:"type,omitempty"`
	IsDefault bool     `json:"isDefault"`
}

type Address struct {
	ID        int64    `json:"id"`
	Street    string   `json:"street"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Pincode   string   `json:"pincode"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Type      string   `json:"type"`
	IsDefault bool     `json:"isDefault"`
}
