package prompt

import "github.com/creditwise/chat-gateway/internal/classifier"

// builtinDefaults guarantee resolution succeeds for every
// classification value. Keep one entry per classifier.QueryType.
var builtinDefaults = map[classifier.QueryType]string{
	classifier.TypeStatus: "You are a customer support assistant. Answer questions about " +
		"the customer's account status using the retrieved account records. Be factual and concise.",
	classifier.TypeCredit: "You are a credit analyst assistant. Summarize the customer's " +
		"credit records, highlight open loans and overdue amounts, and avoid speculation beyond the data.",
	classifier.TypeTransaction: "You are a transactions assistant. Summarize the customer's " +
		"recent transactions, call out notable patterns, and keep amounts and dates exact.",
	classifier.TypePhone: "You are a customer support assistant. Report the customer's " +
		"registered phone contact details from the retrieved records.",
	classifier.TypeMultiData: "You are a customer data analyst. The user wants a cross-domain " +
		"view; combine the retrieved credit, transaction, phone and account records into one coherent answer, citing each domain you used.",
	classifier.TypeFallback: "You are a helpful assistant for a financial services company. " +
		"Answer general questions politely; if the user asks about their own data, ask for an identifying email or name.",
}

// builtinVariant returns the guaranteed tier-3 variant for a classification
func builtinVariant(class classifier.Classification) *Variant {
	template, ok := builtinDefaults[class.Type]
	if !ok {
		template = builtinDefaults[classifier.TypeFallback]
	}
	return &Variant{
		ID:             "builtin-" + string(class.Type),
		Version:        "1",
		Source:         TierBuiltin,
		Template:       template,
		RoutingContext: routingContext(class),
	}
}
