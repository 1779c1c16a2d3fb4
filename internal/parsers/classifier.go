package parsers

import (
	"strings"

	"statement-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// classifierRule maps description keywords to a transaction-type tag.
// Rules are checked in declaration order; the first keyword hit wins.
type classifierRule struct {
	keywords []string
	tag      models.TransactionType
}

var creditRules = []classifierRule{
	{[]string{"neft"}, models.TypeWireCreditNEFT},
	{[]string{"rtgs"}, models.TypeWireCreditRTGS},
	{[]string{"upi"}, models.TypeWireCreditUPI},
	{[]string{"interest"}, models.TypeInterestCredit},
	{[]string{"cheque", "chq"}, models.TypeChequeDeposit},
	{[]string{"transfer"}, models.TypeTransferIn},
}

var debitRules = []classifierRule{
	{[]string{"neft"}, models.TypeWireDebitNEFT},
	{[]string{"rtgs"}, models.TypeWireDebitRTGS},
	{[]string{"upi"}, models.TypeWireDebitUPI},
	{[]string{"salary"}, models.TypeSalaryPayment},
	{[]string{"bank charge", "service charge"}, models.TypeBankCharges},
	{[]string{"cheque", "chq"}, models.TypeChequeWithdrawal},
	{[]string{"transfer"}, models.TypeTransferOut},
}

// Classify assigns a transaction-type tag from the description keywords
// and the direction implied by which amount is non-zero. It never fails;
// when no keyword matches, the generic tag for the direction is returned.
func Classify(description string, debit, credit decimal.Decimal) models.TransactionType {
	desc := strings.ToLower(description)

	if credit.IsPositive() {
		if tag, ok := matchRules(desc, creditRules); ok {
			return tag
		}
		return models.TypeGenericDeposit
	}

	if tag, ok := matchRules(desc, debitRules); ok {
		return tag
	}
	return models.TypeGenericWithdrawal
}

func matchRules(desc string, rules []classifierRule) (models.TransactionType, bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.tag, true
			}
		}
	}
	return "", false
}
