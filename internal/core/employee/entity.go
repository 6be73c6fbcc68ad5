package employee

import "time"

// Employee は colaborador (従業員) エンティティです。Registration (matrícula) が業務上の一意キーです。
type Employee struct {
	ID            int64
	Registration  string
	Name          string
	PIS           string
	CPF           string
	AdmissionDate time.Time
	DismissalDate *time.Time
	Sector        *string
	JobTitle      *string
	Department    *string
	Unit          string
	Allocation    string
	Status        string
	UnitCNPJ      string
	CTPS          *string
	CTPSSeries    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// 各項目の最大長です。
const (
	MaxRegistrationLength = 13
	MaxNameLength         = 50
	MaxPISLength          = 11
	MaxCPFLength          = 11
	MaxOrgUnitLength      = 40
	MaxStatusLength       = 10
	MaxCNPJLength         = 14
	MaxCTPSLength         = 15
)
