package models

// Customer is under automatic optimistic control: the store compares and
// advances RowVersion on every write. BankAccount is unique per customer.
type Customer struct {
	Base
	Name        string
	BankAccount int64
	RowVersion  int64
}

func (c *Customer) Stamp() int64 {
	return c.RowVersion
}

func (c *Customer) SetStamp(v int64) {
	c.RowVersion = v
}
