package importer

// vendorKeywords maps expense category names to the vendor strings that
// appear in bank statement descriptions. Matching is case-insensitive
// substring search; the first hit wins.
var vendorKeywords = map[string][]string{
	"Software/SaaS": {
		"GOOGLE", "GSUITE", "OPENAI", "GITHUB", "AZURE", "AWS", "AMAZON WEB SERVICES",
		"MICROSOFT", "ADOBE", "DROPBOX", "SLACK", "ZOOM", "NOTION", "FIGMA", "CANVA",
		"STRIPE", "TWILIO", "VERCEL", "NETLIFY", "HEROKU", "DIGITAL OCEAN", "DIGITALOCEAN",
		"ZAPIER", "PADDLE", "ZOHO", "HUBSPOT", "SALESFORCE", "AIRTABLE", "MONGODB",
		"SUPABASE", "FIREBASE", "JETBRAINS", "ATLASSIAN", "JIRA", "CONFLUENCE",
		"BITBUCKET", "GITLAB",
	},
	"Business Meals": {
		"RESTAURANT", "CAFE", "COFFEE", "STARBUCKS", "DUNKIN", "MCDONALD", "CHIPOTLE",
		"SUBWAY", "PANERA", "GRUBHUB", "DOORDASH", "UBER EATS", "SEAMLESS", "POSTMATES",
		"GROCERY", "FOOD", "PIZZA", "BURGER", "DELI", "BAKERY",
	},
	"Travel": {
		"AIRLINE", "UNITED", "DELTA", "AMERICAN AIR", "SOUTHWEST", "JETBLUE", "SPIRIT",
		"UBER", "LYFT", "TAXI", "HOTEL", "MARRIOTT", "HILTON", "AIRBNB", "EXPEDIA",
		"BOOKING.COM", "KAYAK", "PRICELINE", "AMTRAK", "RENTAL CAR", "HERTZ", "ENTERPRISE",
	},
	"Office Supplies": {
		"STAPLES", "OFFICE DEPOT", "BEST BUY", "APPLE STORE", "B&H PHOTO",
	},
	"Marketing": {
		"FACEBOOK ADS", "META", "GOOGLE ADS", "LINKEDIN", "TWITTER ADS", "MAILCHIMP",
		"CONSTANT CONTACT", "SENDGRID", "CONVERTKIT",
	},
	"Utilities": {
		"ELECTRIC", "GAS", "WATER", "INTERNET", "COMCAST", "ATT", "VERIZON", "SPECTRUM",
		"T-MOBILE", "XFINITY",
	},
	"Insurance": {
		"INSURANCE", "GEICO", "STATE FARM", "PROGRESSIVE", "ALLSTATE", "LIBERTY MUTUAL",
	},
}
