package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Industries maps TWSE industry codes to their names
var Industries = map[string]string{
	"01": "水泥工業",
	"02": "食品工業",
	"03": "塑膠工業",
	"04": "紡織纖維",
	"05": "電機機械",
	"06": "電器電纜",
	"08": "玻璃陶瓷",
	"09": "造紙工業",
	"10": "鋼鐵工業",
	"11": "橡膠工業",
	"12": "汽車工業",
	"13": "電子工業",
	"14": "建材營造",
	"15": "航運業",
	"16": "觀光餐旅",
	"17": "金融保險",
	"18": "貿易百貨",
	"19": "綜合",
	"20": "其他",
	"21": "化學工業",
	"22": "生技醫療業",
	"23": "油電燃氣業",
	"24": "半導體業",
	"25": "電腦及週邊設備業",
	"26": "光電業",
	"27": "通信網路業",
	"28": "電子零組件業",
	"29": "電子通路業",
	"30": "資訊服務業",
	"31": "其他電子業",
	"32": "文化創意業",
	"33": "農業科技業",
	"34": "電子商務",
	"35": "綠能環保",
	"36": "數位雲端",
	"37": "運動休閒",
	"38": "居家生活",
	"80": "管理股票",
	"91": "存託憑證",
}

// Logical market types
const (
	MarketListed   = "Listed"
	MarketOTC      = "OTC"
	MarketEmerging = "Emerging"
	MarketPublic   = "Public"
)

// MarketTypeLabels maps logical market types to display labels
var MarketTypeLabels = map[string]string{
	MarketListed:   "上市",
	MarketOTC:      "上櫃",
	MarketEmerging: "興櫃",
	MarketPublic:   "公開發行",
}
