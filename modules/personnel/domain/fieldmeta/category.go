package fieldmeta

import "strings"

const (
	CategoryWork     = "工作信息"
	CategoryPersonal = "个人信息"
	CategoryIdentity = "证件信息"
	CategoryBank     = "银行卡信息"
	CategoryContract = "合同信息"
)

type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Categories is the display order of the field admin screen.
var Categories = []Category{
	{Name: CategoryWork, Description: "工号、人员状态、部门、职务等工作相关信息"},
	{Name: CategoryPersonal, Description: "性别、出生日期、民族、籍贯、婚姻状况等"},
	{Name: CategoryIdentity, Description: "身份标识、身份证/护照号码、证件有效期等"},
	{Name: CategoryBank, Description: "银行账号、开户行等银行卡信息"},
	{Name: CategoryContract, Description: "合同类型、签订次数、合同起止日期等"},
}

// CategoryRule assigns a definition to Name when Match holds.
type CategoryRule struct {
	Name  string
	Match func(FieldDefinition) bool
}

// categoryRules is evaluated in order and the first match wins. Fields that
// match nothing fall into CategoryPersonal. This is keyword inference standing
// in for an explicit field-to-category relation; ambiguous labels resolve to
// the earliest rule (e.g. 合同类型 is work because of 类型).
var categoryRules = []CategoryRule{
	{
		Name: CategoryWork,
		Match: keywordMatcher(
			[]string{"employee", "job", "department", "position", "work", "office"},
			[]string{"工号", "部门", "职务", "岗位", "序列", "上级", "事业部", "入职", "转正", "试用", "实习", "状态", "类型", "标签"},
		),
	},
	{
		Name: CategoryIdentity,
		Match: keywordMatcher(
			[]string{"id_", "passport", "document"},
			[]string{"身份", "证件", "护照", "有效期", "剩余"},
		),
	},
	{
		Name: CategoryBank,
		Match: keywordMatcher(
			[]string{"bank", "account"},
			[]string{"银行", "账号", "开户", "卡号"},
		),
	},
	{
		Name:  CategoryContract,
		Match: keywordMatcher([]string{"contract"}, []string{"合同"}),
	},
}

func keywordMatcher(keyTokens []string, labelTokens []string) func(FieldDefinition) bool {
	return func(def FieldDefinition) bool {
		key := strings.ToLower(def.Key)
		for _, tok := range keyTokens {
			if strings.Contains(key, tok) {
				return true
			}
		}
		for _, tok := range labelTokens {
			if strings.Contains(def.Label, tok) {
				return true
			}
		}
		return false
	}
}

func Categorize(def FieldDefinition) string {
	for _, rule := range categoryRules {
		if rule.Match(def) {
			return rule.Name
		}
	}
	return CategoryPersonal
}

type CategoryGroup struct {
	Category
	Fields []FieldDefinition `json:"fields"`
}

// GroupByCategory returns every category, in display order, even when empty.
func GroupByCategory(defs []FieldDefinition) []CategoryGroup {
	idx := make(map[string]int, len(Categories))
	out := make([]CategoryGroup, 0, len(Categories))
	for i, c := range Categories {
		idx[c.Name] = i
		out = append(out, CategoryGroup{Category: c, Fields: []FieldDefinition{}})
	}
	for _, def := range defs {
		i := idx[Categorize(def)]
		out[i].Fields = append(out[i].Fields, def)
	}
	return out
}
