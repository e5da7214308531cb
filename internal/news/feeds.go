package news

import (
	"sort"
	"strings"
)

// Feed is one RSS source.
type Feed struct {
	Source string
	URL    string
}

// DefaultFeeds covers the major Indian market news outlets.
var DefaultFeeds = []Feed{
	{"Moneycontrol", "https://www.moneycontrol.com/rss/latestnews.xml"},
	{"Economic Times", "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms"},
	{"Business Standard", "https://www.business-standard.com/rss/markets-106.rss"},
	{"LiveMint", "https://www.livemint.com/rss/markets"},
	{"Financial Express", "https://www.financialexpress.com/market/feed/"},
	{"NDTV Profit", "https://feeds.feedburner.com/ndtvprofit-latest"},
	{"Reuters India", "https://feeds.reuters.com/reuters/INtopNews"},
	{"Investing.com", "https://in.investing.com/rss/news.rss"},
}

// stockAliases maps NSE symbols to the names an article would use for
// them. Aliases of three characters or fewer only match on word
// boundaries so "IT" or "M&M" do not fire on unrelated prose.
var stockAliases = map[string][]string{
	// Mega caps
	"RELIANCE":   {"Reliance", "RIL", "Reliance Industries", "Mukesh Ambani", "Jio"},
	"TCS":        {"TCS", "Tata Consultancy", "Tata Consultancy Services"},
	"INFY":       {"Infosys", "INFY", "Narayana Murthy"},
	"HDFCBANK":   {"HDFC Bank", "HDFCBANK"},
	"ICICIBANK":  {"ICICI Bank", "ICICIBANK", "ICICI"},
	"HINDUNILVR": {"Hindustan Unilever", "HUL"},
	"SBIN":       {"SBI", "State Bank of India", "State Bank"},
	"BHARTIARTL": {"Bharti Airtel", "Airtel"},
	"ITC":        {"ITC"},
	"KOTAKBANK":  {"Kotak Mahindra", "Kotak Bank", "Kotak"},

	// Large caps
	"LT":         {"Larsen", "L&T", "Larsen & Toubro"},
	"HCLTECH":    {"HCL Tech", "HCL Technologies", "HCL"},
	"AXISBANK":   {"Axis Bank"},
	"WIPRO":      {"Wipro"},
	"MARUTI":     {"Maruti", "Maruti Suzuki"},
	"TATAMOTORS": {"Tata Motors"},
	"SUNPHARMA":  {"Sun Pharma", "Sun Pharmaceutical"},
	"ULTRACEMCO": {"UltraTech", "UltraTech Cement"},
	"TITAN":      {"Titan", "Titan Company"},
	"BAJFINANCE": {"Bajaj Finance"},
	"BAJAJFINSV": {"Bajaj Finserv"},
	"NTPC":       {"NTPC"},
	"POWERGRID":  {"Power Grid", "Power Grid Corporation"},
	"ONGC":       {"ONGC", "Oil and Natural Gas"},
	"TATASTEEL":  {"Tata Steel"},
	"ASIANPAINT": {"Asian Paints"},
	"NESTLEIND":  {"Nestle India", "Nestle"},
	"TECHM":      {"Tech Mahindra"},
	"JSWSTEEL":   {"JSW Steel", "JSW"},
	"DRREDDY":    {"Dr Reddy", "Dr. Reddy's", "Dr Reddy's"},
	"CIPLA":      {"Cipla"},
	"COALINDIA":  {"Coal India"},
	"BPCL":       {"BPCL", "Bharat Petroleum"},
	"HEROMOTOCO": {"Hero MotoCorp", "Hero Motor"},
	"EICHERMOT":  {"Eicher Motors", "Royal Enfield"},
	"DIVISLAB":   {"Divi's Lab", "Divi's Laboratories"},
	"GRASIM":     {"Grasim", "Grasim Industries"},
	"APOLLOHOSP": {"Apollo Hospitals", "Apollo"},

	// Adani Group
	"ADANIENT":   {"Adani Enterprises", "Adani"},
	"ADANIPORTS": {"Adani Ports"},
	"ADANIGREEN": {"Adani Green"},
	"ADANIPOWER": {"Adani Power"},

	// Banks & Finance
	"INDUSINDBK": {"IndusInd Bank"},
	"BANDHANBNK": {"Bandhan Bank"},
	"PNB":        {"Punjab National Bank", "PNB"},
	"BANKBARODA": {"Bank of Baroda"},
	"IDFCFIRSTB": {"IDFC First Bank", "IDFC"},
	"SBILIFE":    {"SBI Life"},
	"HDFCLIFE":   {"HDFC Life"},
	"ICICIPRULI": {"ICICI Prudential"},

	// IT & Tech
	"LTIM":       {"LTI Mindtree", "LTIMindtree", "Mindtree"},
	"MPHASIS":    {"Mphasis"},
	"PERSISTENT": {"Persistent Systems"},
	"COFORGE":    {"Coforge"},

	// Auto
	"BAJAJ-AUTO": {"Bajaj Auto"},
	"M&M":        {"Mahindra", "M&M", "Mahindra & Mahindra"},
	"ASHOKLEY":   {"Ashok Leyland"},

	// Pharma & Healthcare
	"BIOCON":     {"Biocon"},
	"LUPIN":      {"Lupin"},
	"AUROPHARMA": {"Aurobindo Pharma", "Aurobindo"},

	// Indices
	"NIFTY":     {"Nifty", "Nifty50", "Nifty 50", "NSE index"},
	"SENSEX":    {"Sensex", "BSE Sensex", "BSE index", "BSE"},
	"BANKNIFTY": {"Bank Nifty", "BankNifty"},
}

// Aliases returns the known names for a symbol, falling back to the
// symbol itself for stocks outside the alias table.
func Aliases(symbol string) []string {
	if aliases, ok := stockAliases[symbol]; ok {
		return aliases
	}
	return []string{symbol}
}

// SearchResult pairs a symbol with its primary display name.
type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Search matches a query against symbols and aliases,
// case-insensitive, capped at limit results.
func Search(query string, limit int) []SearchResult {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return []SearchResult{}
	}

	symbols := make([]string, 0, len(stockAliases))
	for symbol := range stockAliases {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	results := []SearchResult{}
	for _, symbol := range symbols {
		aliases := stockAliases[symbol]
		hit := strings.Contains(symbol, query)
		if !hit {
			for _, alias := range aliases {
				if strings.Contains(strings.ToUpper(alias), query) {
					hit = true
					break
				}
			}
		}
		if hit {
			name := symbol
			if len(aliases) > 0 {
				name = aliases[0]
			}
			results = append(results, SearchResult{Symbol: symbol, Name: name})
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}
