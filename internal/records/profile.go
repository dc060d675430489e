package records

// profile lists the field aliases each kind uses in backend payloads, in priority order.
type profile struct {
	path     string
	label    string
	document bool

	ids          []string
	codes        []string
	names        []string
	statuses     []string
	actives      []string
	outstanding  []string
	creditLimits []string
	emails       []string
	taxNumbers   []string
	addresses    []string
	businessType []string
	currencies   []string
	createdAt    []string
}

var (
	commonIDs       = []string{"_id", "id"}
	commonStatus    = []string{"status"}
	commonActive    = []string{"active", "isActive", "is_active"}
	commonOutstand  = []string{"outstandingBalance", "outstanding", "balanceDue", "outstanding_balance"}
	commonCredit    = []string{"creditLimit", "creditLimits", "credit_limit"}
	commonEmail     = []string{"email", "contactEmail", "contactDetails.email"}
	commonTax       = []string{"gstNumber", "gstNo", "taxNumber", "taxId", "tax_id", "panNo"}
	commonAddress   = []string{"address", "registeredAddress", "primaryAddress", "billingAddress"}
	commonBizType   = []string{"businessType", "business_type", "type"}
	commonCurrency  = []string{"currency", "currencyCode", "currency_code"}
	commonCreatedAt = []string{"createdAt", "created_at", "createdDate"}
)

func masterProfile(path, label string, codes, names []string) profile {
	return profile{
		path:         path,
		label:        label,
		ids:          commonIDs,
		codes:        codes,
		names:        names,
		statuses:     commonStatus,
		actives:      commonActive,
		outstanding:  commonOutstand,
		creditLimits: commonCredit,
		emails:       commonEmail,
		taxNumbers:   commonTax,
		addresses:    commonAddress,
		businessType: commonBizType,
		currencies:   commonCurrency,
		createdAt:    commonCreatedAt,
	}
}

func documentProfile(path, label string, codes []string) profile {
	p := masterProfile(path, label, codes, []string{
		"vendor.name", "vendorName", "customer.name", "customerName", "name",
	})
	p.document = true
	p.statuses = []string{"status", "orderStatus", "documentStatus"}
	p.outstanding = []string{"outstandingBalance", "balanceDue", "netAmountAfterCharges", "totalAmount", "netAmount"}
	p.emails = []string{"vendor.email", "customer.email", "email"}
	p.taxNumbers = []string{"vendor.gstNumber", "customer.gstNumber", "gstNumber"}
	p.addresses = []string{"shippingAddress", "billingAddress", "address"}
	return p
}

var profiles = map[Kind]profile{
	KindCompany:  masterProfile("companies", "Companies", []string{"companyCode", "code"}, []string{"companyName", "name"}),
	KindVendor:   masterProfile("vendors", "Vendors", []string{"vendorCode", "code"}, []string{"vendorName", "name"}),
	KindCustomer: masterProfile("customers", "Customers", []string{"customerCode", "code"}, []string{"customerName", "name"}),
	KindItem:     masterProfile("items", "Items", []string{"itemCode", "itemNum", "code"}, []string{"itemName", "name"}),

	KindPurchaseOrder:  documentProfile("purchaseorders", "Purchase Orders", []string{"orderNum", "purchaseOrderNum", "poNumber", "code"}),
	KindPurchaseReturn: documentProfile("purchasereturns", "Purchase Returns", []string{"returnNum", "purchaseReturnNum", "code"}),
	KindCreditNote:     documentProfile("creditnotes", "Credit Notes", []string{"creditNoteNum", "noteNum", "code"}),
	KindDebitNote:      documentProfile("debitnotes", "Debit Notes", []string{"debitNoteNum", "noteNum", "code"}),
	KindInvoice:        documentProfile("invoices", "Invoices", []string{"invoiceNum", "invoiceNumber", "code"}),
}

func profileFor(k Kind) profile {
	if p, ok := profiles[k]; ok {
		return p
	}
	return masterProfile(string(k), string(k), []string{"code"}, []string{"name"})
}
