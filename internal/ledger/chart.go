package ledger

// DefaultChart is the minimal IFRS chart of accounts seeded into a new
// ledger. Header accounts (codes ending in 00) group the posting accounts
// below them.
var DefaultChart = []Account{
	// Assets (1xxx)
	{ID: "1000", Code: 1000, Name: "Current Assets", Classification: Asset, Description: "Assets expected to be realised within twelve months"},
	{ID: "1010", Code: 1010, Name: "Cash and Cash Equivalents", Classification: Asset, ParentID: "1000", Description: "Bank balances and petty cash"},
	{ID: "1020", Code: 1020, Name: "Accounts Receivable", Classification: Asset, ParentID: "1000", Description: "Amounts owed to the entity by customers"},
	{ID: "1030", Code: 1030, Name: "Inventory", Classification: Asset, ParentID: "1000", Description: "Goods held for sale"},
	{ID: "1040", Code: 1040, Name: "Prepaid Expenses", Classification: Asset, ParentID: "1000", Description: "Payments made in advance for future expenses"},
	{ID: "1500", Code: 1500, Name: "Non-current Assets", Classification: Asset, Description: "Long-term assets"},
	{ID: "1510", Code: 1510, Name: "Property, Plant & Equipment", Classification: Asset, ParentID: "1500", Description: "Long-term tangible assets"},
	{ID: "1520", Code: 1520, Name: "Accumulated Depreciation", Classification: Asset, ParentID: "1500", Description: "Contra asset offsetting property, plant & equipment"},

	// Liabilities (2xxx)
	{ID: "2000", Code: 2000, Name: "Current Liabilities", Classification: Liability, Description: "Obligations due within twelve months"},
	{ID: "2010", Code: 2010, Name: "Accounts Payable", Classification: Liability, ParentID: "2000", Description: "Amounts owed to suppliers"},
	{ID: "2020", Code: 2020, Name: "Customer Deposits", Classification: Liability, ParentID: "2000", Description: "Customer advances and balances"},
	{ID: "2030", Code: 2030, Name: "Accrued Expenses", Classification: Liability, ParentID: "2000", Description: "Expenses incurred but not yet paid"},
	{ID: "2040", Code: 2040, Name: "Tax Payable", Classification: Liability, ParentID: "2000", Description: "Tax held on behalf of tax authorities"},
	{ID: "2500", Code: 2500, Name: "Non-current Liabilities", Classification: Liability, Description: "Obligations due after twelve months"},
	{ID: "2510", Code: 2510, Name: "Loans Payable", Classification: Liability, ParentID: "2500", Description: "Outstanding loan obligations"},

	// Equity (3xxx)
	{ID: "3000", Code: 3000, Name: "Owner's Equity", Classification: Equity, Description: "Residual interest in the assets"},
	{ID: "3010", Code: 3010, Name: "Capital", Classification: Equity, ParentID: "3000", Description: "Owner's capital contributions and withdrawals"},
	{ID: "3020", Code: 3020, Name: "Retained Earnings", Classification: Equity, ParentID: "3000", Description: "Accumulated profits of closed periods"},

	// Revenue (4xxx)
	{ID: "4000", Code: 4000, Name: "Operating Revenue", Classification: Revenue, Description: "Income from ordinary activities"},
	{ID: "4010", Code: 4010, Name: "Service Revenue", Classification: Revenue, ParentID: "4000", Description: "Income from services rendered"},
	{ID: "4020", Code: 4020, Name: "Sales", Classification: Revenue, ParentID: "4000", Description: "Income from goods sold"},
	{ID: "4500", Code: 4500, Name: "Other Income", Classification: Revenue, Description: "Income outside ordinary activities"},
	{ID: "4510", Code: 4510, Name: "Interest Income", Classification: Revenue, ParentID: "4500", Description: "Income earned from interest"},

	// Expenses (5xxx)
	{ID: "5000", Code: 5000, Name: "Operating Expenses", Classification: Expense, Description: "General operating costs"},
	{ID: "5010", Code: 5010, Name: "Rent", Classification: Expense, ParentID: "5000", Description: "Premises rent"},
	{ID: "5020", Code: 5020, Name: "Salaries and Wages", Classification: Expense, ParentID: "5000", Description: "Employee compensation"},
	{ID: "5030", Code: 5030, Name: "Depreciation", Classification: Expense, ParentID: "5000", Description: "Allocation of asset costs over useful life"},
	{ID: "5500", Code: 5500, Name: "Cost of Goods Sold", Classification: Expense, Description: "Direct costs of goods sold"},
	{ID: "5510", Code: 5510, Name: "Purchases", Classification: Expense, ParentID: "5500", Description: "Goods purchased for resale"},
}
