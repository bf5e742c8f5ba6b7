package models

// Branch represents a bank branch accounts are attached to.
type Branch struct {
	ID      int64  `json:"id"`
	Name    string `json:"branch_name"`
	Address string `json:"address"`
}
