package fault

// Class is the three-letter prefix of an engine result code.
type Class string

const (
	ClassSuccess   Class = "tes"
	ClassClaimed   Class = "tec" // fee claimed, transaction failed
	ClassFailure   Class = "tef"
	ClassLocal     Class = "tel"
	ClassMalformed Class = "tem"
	ClassRetry     Class = "ter"
	ClassUnknown   Class = ""
)

// Result codes referenced by name elsewhere in the module.
const (
	CodeSuccess = "tesSUCCESS"
	CodeQueued  = "terQUEUED"
)

// ClassOf returns the class of an engine result code.
func ClassOf(code string) Class {
	if len(code) < 3 {
		return ClassUnknown
	}
	switch c := Class(code[:3]); c {
	case ClassSuccess, ClassClaimed, ClassFailure, ClassLocal, ClassMalformed, ClassRetry:
		return c
	default:
		return ClassUnknown
	}
}

// IsSuccess reports whether code is tesSUCCESS.
func IsSuccess(code string) bool {
	return code == CodeSuccess
}

var descriptions = map[string]string{
	"tesSUCCESS":              "The transaction was applied.",
	"tecNO_ENTRY":             "Token not found. It may have been already destroyed.",
	"tecHAS_OBLIGATIONS":      "Cannot destroy token: there are still token holders.",
	"tecNO_PERMISSION":        "Permission denied: you are not authorized to perform this operation.",
	"tecINSUFFICIENT_RESERVE": "Insufficient XRP reserve. Add more XRP to the account.",
	"tecUNFUNDED_PAYMENT":     "Insufficient token balance for this operation.",
	"tecNO_AUTH":              "The holder is not authorized to hold this token.",
	"tecLOCKED":               "The token or holder balance is locked.",
	"tecOBJECT_NOT_FOUND":     "The referenced ledger object does not exist.",
	"tecDUPLICATE":            "The ledger object already exists.",
	"tecPATH_DRY":             "The payment could not be delivered.",
	"tecNO_DST":               "The destination account does not exist.",
	"tefMAX_LEDGER":           "Transaction expired. Please try again.",
	"tefPAST_SEQ":             "The account sequence has already been used.",
	"tefBAD_AUTH":             "The signing key is not authorized for this account.",
	"telINSUF_FEE_P":          "The fee is too low for the current server load.",
	"telCAN_NOT_QUEUE":        "The server could not queue the transaction.",
	"temDISABLED":             "This feature is not yet enabled on the network.",
	"temMALFORMED":            "The transaction is malformed.",
	"temBAD_AMOUNT":           "The amount is invalid.",
	"temBAD_FEE":              "The fee is invalid.",
	"temINVALID_FLAG":         "The transaction carries an invalid flag.",
	"terQUEUED":               "The transaction was queued for a later ledger.",
	"terPRE_SEQ":              "The account sequence is ahead of the ledger.",
	"terNO_ACCOUNT":           "The sending account does not exist.",
}

// Describe returns a stable human message for code. Unknown codes fall back
// to a message naming the class.
func Describe(code string) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	switch ClassOf(code) {
	case ClassClaimed:
		return "The transaction failed; the fee was charged."
	case ClassFailure:
		return "The transaction failed and cannot succeed as signed."
	case ClassLocal:
		return "The server refused to relay the transaction."
	case ClassMalformed:
		return "The transaction is malformed."
	case ClassRetry:
		return "The transaction could not be applied yet."
	}
	if code == "" {
		return "An unexpected error occurred."
	}
	return "Unrecognized result " + code + "."
}
