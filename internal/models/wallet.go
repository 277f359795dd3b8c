package models

// Supported wallet chains for transaction import.
const (
	ChainEthereum = "ethereum"
	ChainNeo      = "neo"
	ChainBitcoin  = "bitcoin"
)

// Wallet is an on-chain address tracked for a company.
type Wallet struct {
	BaseModel

	CompanyID string `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string `gorm:"not null" json:"name"`
	Chain     string `gorm:"not null;index" json:"chain"`
	Address   string `gorm:"not null;index" json:"address"`
	Currency  string `gorm:"default:ETH" json:"currency"`
	Active    bool   `gorm:"default:true" json:"active"`

	Transactions []Transaction `gorm:"foreignKey:WalletID" json:"transactions,omitempty"`
}
