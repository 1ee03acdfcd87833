package paypal

// StatusCompleted — статус полностью оплаченного заказа PayPal.
const StatusCompleted = "COMPLETED"

// Order описывает заказ Checkout в том виде, в каком его возвращает PayPal.
type Order struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	UpdateTime    string         `json:"update_time"`
	Payer         *Payer         `json:"payer,omitempty"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

// Payer описывает плательщика.
type Payer struct {
	EmailAddress string `json:"email_address"`
	PayerID      string `json:"payer_id,omitempty"`
}

// PurchaseUnit описывает единицу покупки заказа.
type PurchaseUnit struct {
	ReferenceID string    `json:"reference_id,omitempty"`
	Payments    *Payments `json:"payments,omitempty"`
}

// Payments содержит платежи по единице покупки.
type Payments struct {
	Captures []Capture `json:"captures"`
}

// Capture описывает фактически списанную сумму.
type Capture struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Amount     Money  `json:"amount"`
	UpdateTime string `json:"update_time,omitempty"`
}

// Money — сумма в строковом представлении PayPal.
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// FirstCapture возвращает первое списание первой единицы покупки.
func (o *Order) FirstCapture() (*Capture, bool) {
	if o == nil || len(o.PurchaseUnits) == 0 {
		return nil, false
	}
	payments := o.PurchaseUnits[0].Payments
	if payments == nil || len(payments.Captures) == 0 {
		return nil, false
	}
	return &payments.Captures[0], true
}

// PayerEmail возвращает адрес электронной почты плательщика, если он известен.
func (o *Order) PayerEmail() string {
	if o == nil || o.Payer == nil {
		return ""
	}
	return o.Payer.EmailAddress
}
