package courses

// Department is an academic unit whose course table can be queried.
type Department struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Departments lists the undergraduate units offered by the course query
// menu, in menu order.
var Departments = []Department{
	{"C10", "文學院"},
	{"C20", "管理學院"},
	{"C30", "農業暨自然資源學院"},
	{"C60", "工學院"},
	{"C70", "法政學院"},
	{"U10F", "台灣人文創新學士學位學程"},
	{"U11", "中國文學系學士班"},
	{"U12", "外國語文學系學士班"},
	{"U13", "歷史學系學士班"},
	{"U21", "財務金融學系學士班"},
	{"U23", "企業管理學系學士班"},
	{"U24", "法律學系學士班"},
	{"U28", "會計學系學士班"},
	{"U29", "資訊管理學系學士班"},
	{"U30F", "景觀與遊憩學士學位學程"},
	{"U30G", "生物科技學士學位學程"},
	{"U30H", "國際農企業學士學位學程"},
	{"U31", "農藝學系學士班"},
	{"U32", "園藝學系學士班"},
	{"U33A", "森林學系林學組學士班"},
	{"U33B", "森林學系木材科學組學士班"},
	{"U34", "應用經濟學系學士班"},
	{"U35", "植物病理學系學士班"},
	{"U36", "昆蟲學系學士班"},
	{"U37", "動物科學系學士班"},
	{"U38A", "獸醫學系學士班"},
	{"U38B", "獸醫學系學士班"},
	{"U39", "土壤環境科學系學士班"},
	{"U40", "生物產業機電工程學系學士班"},
	{"U42", "水土保持學系學士班"},
	{"U43", "食品暨應用生物科技學系學士班"},
	{"U44", "行銷學系學士班"},
	{"U51", "化學系學士班"},
	{"U52", "生命科學系學士班"},
	{"U53F", "應用數學系應用數學組學士班"},
	{"U53G", "應用數學系數據科學與計算組學士班"},
	{"U54A", "物理學系一般物理組學士班"},
	{"U54B", "物理學系光電物理組學士班"},
	{"U56", "資訊工程學系學士班"},
	{"U60G", "智慧創意工程學士學位學程"},
	{"U61B", "機械工程學系學士班"},
	{"U61A", "機械工程學系學士班"},
	{"U62A", "土木工程學系學士班"},
	{"U62B", "土木工程學系學士班"},
	{"U63", "環境工程學系學士班"},
	{"U64B", "電機工程學系學士班"},
	{"U64A", "電機工程學系學士班"},
	{"U64F", "電機資訊學院學士班"},
	{"U65", "化學工程學系學士班"},
	{"U66", "材料科學與工程學系學士班"},
	{"U86", "學士後醫學系學士班"},
}

// Lookup returns the departments with the given codes, in the order given.
// Unknown codes are returned separately.
func Lookup(codes []string) (found []Department, unknown []string) {
	byCode := make(map[string]Department, len(Departments))
	for _, d := range Departments {
		byCode[d.Code] = d
	}
	for _, c := range codes {
		if d, ok := byCode[c]; ok {
			found = append(found, d)
		} else {
			unknown = append(unknown, c)
		}
	}
	return found, unknown
}
