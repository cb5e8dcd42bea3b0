package enum

// ── State machines (CHECK constrained in DB) ──

// Order payment status drives revenue recognition in the ledger.
// PENDING_100 recognizes the full total despite the label; that mirrors the
// shop's historical bookkeeping and is kept pending a product decision.
const (
	OrderStatusQuote      = "QUOTE"
	OrderStatusPending50  = "PENDING_50"
	OrderStatusPending100 = "PENDING_100"
	OrderStatusPaid100    = "PAID_100"
	OrderStatusFinalized  = "FINALIZED"
)

const (
	ProductionStagePrePrep    = "PRE_PREP"
	ProductionStageProduction = "PRODUCTION"
	ProductionStageDrying     = "DRYING"
	ProductionStagePackaging  = "PACKAGING"
	ProductionStageReady      = "READY"
)

const (
	TransactionTypeIncome  = "INCOME"
	TransactionTypeExpense = "EXPENSE"
)

const (
	MeasureUnitPiece    = "UN"
	MeasureUnitKilogram = "KG"
	MeasureUnitGram     = "G"
)

const (
	UserRoleOwner = "OWNER"
	UserRoleStaff = "STAFF"
)

// ── Configurable labels (no DB constraint) ──

const (
	TransactionCategorySale        = "Sale"
	TransactionCategoryIngredients = "Ingredients"
	TransactionCategoryPackaging   = "Packaging"
	TransactionCategoryFixedCosts  = "Fixed Costs"
	TransactionCategoryMarketing   = "Marketing"
	TransactionCategoryEquipment   = "Equipment"
	TransactionCategoryOther       = "Other"
)
