package countrypack

var euAddress = []AddressField{
	{Name: "name", Label: "Full name", Required: true},
	{Name: "street", Label: "Street and number", Required: true},
	{Name: "postalCode", Label: "Postal code", Required: true},
	{Name: "city", Label: "City", Required: true},
	{Name: "phone", Label: "Phone", Required: false},
}

const euGDPR = "We use cookies and process personal data to run this store. " +
	"You can withdraw consent at any time from the privacy settings."

var builtin = []Pack{
	{
		Code:   "RO",
		Locale: "ro-RO",
		Currency: Currency{
			Code: "RON", Symbol: "lei", Position: SymbolAfter,
			DecimalSeparator: ",", ThousandsSeparator: ".", Digits: 2,
		},
		Address: []AddressField{
			{Name: "name", Label: "Nume complet", Required: true},
			{Name: "street", Label: "Strada si numar", Required: true},
			{Name: "city", Label: "Localitate", Required: true},
			{Name: "county", Label: "Judet", Required: true},
			{Name: "postalCode", Label: "Cod postal", Required: false},
			{Name: "phone", Label: "Telefon", Required: true},
		},
		Legal: Legal{
			Disclosure:    "Preturile afisate includ TVA. Consumatorii pot apela la ANPC si la platforma SOL pentru solutionarea litigiilor.",
			TaxDisclosure: "TVA inclus",
			GDPRConsent:   "Folosim cookie-uri si prelucram date personale conform GDPR. Iti poti retrage consimtamantul oricand.",
		},
	},
	{
		Code:   "US",
		Locale: "en-US",
		Currency: Currency{
			Code: "USD", Symbol: "$", Position: SymbolBefore,
			DecimalSeparator: ".", ThousandsSeparator: ",", Digits: 2,
		},
		Address: []AddressField{
			{Name: "name", Label: "Full name", Required: true},
			{Name: "street", Label: "Street address", Required: true},
			{Name: "city", Label: "City", Required: true},
			{Name: "state", Label: "State", Required: true},
			{Name: "zip", Label: "ZIP code", Required: true},
		},
		Legal: Legal{
			Disclosure:    "Prices exclude sales tax, which is calculated at checkout.",
			TaxDisclosure: "Plus applicable sales tax",
			GDPRConsent:   "",
		},
	},
	{
		Code:   "GB",
		Locale: "en-GB",
		Currency: Currency{
			Code: "GBP", Symbol: "£", Position: SymbolBefore,
			DecimalSeparator: ".", ThousandsSeparator: ",", Digits: 2,
		},
		Address: []AddressField{
			{Name: "name", Label: "Full name", Required: true},
			{Name: "street", Label: "Address line", Required: true},
			{Name: "city", Label: "Town or city", Required: true},
			{Name: "postcode", Label: "Postcode", Required: true},
		},
		Legal: Legal{
			Disclosure:    "Prices include VAT.",
			TaxDisclosure: "Incl. VAT",
			GDPRConsent:   euGDPR,
		},
	},
	{
		Code:   "DE",
		Locale: "de-DE",
		Currency: Currency{
			Code: "EUR", Symbol: "€", Position: SymbolAfter,
			DecimalSeparator: ",", ThousandsSeparator: ".", Digits: 2,
		},
		Address: euAddress,
		Legal: Legal{
			Disclosure:    "Alle Preise inkl. MwSt. zzgl. Versandkosten. Impressum und Widerrufsbelehrung siehe Fusszeile.",
			TaxDisclosure: "inkl. MwSt.",
			GDPRConsent:   "Wir verwenden Cookies und verarbeiten personenbezogene Daten gemaess DSGVO.",
		},
	},
	{
		Code:   "FR",
		Locale: "fr-FR",
		Currency: Currency{
			Code: "EUR", Symbol: "€", Position: SymbolAfter,
			DecimalSeparator: ",", ThousandsSeparator: " ", Digits: 2,
		},
		Address: euAddress,
		Legal: Legal{
			Disclosure:    "Prix TTC. Droit de retractation de 14 jours.",
			TaxDisclosure: "TTC",
			GDPRConsent:   "Nous utilisons des cookies et traitons des donnees personnelles conformement au RGPD.",
		},
	},
	{
		Code:   "IT",
		Locale: "it-IT",
		Currency: Currency{
			Code: "EUR", Symbol: "€", Position: SymbolAfter,
			DecimalSeparator: ",", ThousandsSeparator: ".", Digits: 2,
		},
		Address: euAddress,
		Legal: Legal{
			Disclosure:    "Prezzi IVA inclusa.",
			TaxDisclosure: "IVA inclusa",
			GDPRConsent:   euGDPR,
		},
	},
	{
		Code:   "ES",
		Locale: "es-ES",
		Currency: Currency{
			Code: "EUR", Symbol: "€", Position: SymbolAfter,
			DecimalSeparator: ",", ThousandsSeparator: ".", Digits: 2,
		},
		Address: euAddress,
		Legal: Legal{
			Disclosure:    "Precios con IVA incluido.",
			TaxDisclosure: "IVA incluido",
			GDPRConsent:   euGDPR,
		},
	},
	{
		Code:   "NL",
		Locale: "nl-NL",
		Currency: Currency{
			Code: "EUR", Symbol: "€", Position: SymbolBefore,
			DecimalSeparator: ",", ThousandsSeparator: ".", Digits: 2,
		},
		Address: euAddress,
		Legal: Legal{
			Disclosure:    "Prijzen inclusief btw.",
			TaxDisclosure: "incl. btw",
			GDPRConsent:   euGDPR,
		},
	},
	{
		Code:   "BG",
		Locale: "bg-BG",
		Currency: Currency{
			Code: "BGN", Symbol: "лв.", Position: SymbolAfter,
			DecimalSeparator: ",", ThousandsSeparator: " ", Digits: 2,
		},
		Address: euAddress,
		Legal: Legal{
			Disclosure:    "Цените са с включен ДДС.",
			TaxDisclosure: "с ДДС",
			GDPRConsent:   euGDPR,
		},
	},
	{
		Code:   "HU",
		Locale: "hu-HU",
		Currency: Currency{
			Code: "HUF", Symbol: "Ft", Position: SymbolAfter,
			DecimalSeparator: ",", ThousandsSeparator: " ", Digits: 0,
		},
		Address: euAddress,
		Legal: Legal{
			Disclosure:    "Az arak az AFA-t tartalmazzak.",
			TaxDisclosure: "AFA-val",
			GDPRConsent:   euGDPR,
		},
	},
	{
		Code:   "PL",
		Locale: "pl-PL",
		Currency: Currency{
			Code: "PLN", Symbol: "zł", Position: SymbolAfter,
			DecimalSeparator: ",", ThousandsSeparator: " ", Digits: 2,
		},
		Address: euAddress,
		Legal: Legal{
			Disclosure:    "Ceny zawieraja VAT.",
			TaxDisclosure: "z VAT",
			GDPRConsent:   euGDPR,
		},
	},
}
