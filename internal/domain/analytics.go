package domain

const DayLayout = "2006-01-02"

type AnalyticsSummary struct {
	Users        int64   `json:"users"`
	Products     int64   `json:"products"`
	TotalSales   int64   `json:"totalSales"`
	TotalRevenue float64 `json:"totalRevenue"`
}

type OrderTotals struct {
	TotalSales   int64   `bson:"totalSales"`
	TotalRevenue float64 `bson:"totalRevenue"`
}

type DailySales struct {
	Date    string  `bson:"_id" json:"date"`
	Sales   int64   `bson:"sales" json:"sales"`
	Revenue float64 `bson:"revenue" json:"revenue"`
}
