package models

// Layout identifies the statement's table header variant.
type Layout string

const (
	// LayoutInline has the header "Balance (RM)" on a single line.
	LayoutInline Layout = "inline"
	// LayoutSplit has "Balance" and "(RM)" on consecutive lines.
	LayoutSplit Layout = "split"
)

// Shape is the title form recognised by the title classifier.
type Shape string

const (
	ShapeDeposit    Shape = "deposit"
	ShapeWithdrawal Shape = "withdrawal"
	ShapeInvestment Shape = "investment"
	ShapeRepayment  Shape = "repayment"
	ShapeAdjustment Shape = "adjustment"
	ShapeOther      Shape = "other"
)

// Narration is the human readable part of a transaction header.
type Narration struct {
	Shape   Shape  `json:"shape"`
	Text    string `json:"text"`
	Comment string `json:"comment,omitempty"`
}

// Role names one of the fixed accounts a posting can land in.
type Role string

const (
	RoleAsset   Role = "asset"
	RoleFunds   Role = "funds"
	RoleBank    Role = "bank"
	RoleIncome  Role = "income"
	RoleExpense Role = "expense"
)
