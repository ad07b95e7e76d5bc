package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"wardrobeapi/models"
)

const recognitionPrompt = `请分析这张衣物图片，返回 JSON 格式的识别结果：
{
  "colorPrimary": "主色（如：黑色、白色、藏青色）",
  "colorSecondary": "辅色（可选）",
  "category": "分类（上装/下装/外套/内搭/鞋子/配饰/套装）",
  "type": "具体类型（如：T恤、牛仔裤、羽绒服）",
  "subType": "子类型（可选，如：短袖T恤）",
  "style": ["风格数组，如：休闲、运动"],
  "pattern": "花纹（纯色/条纹/格子/印花/迷彩）",
  "season": ["适用季节数组：春/夏/秋/冬"],
  "material": ["材质数组，如：棉、羊毛"],
  "thickness": "厚度（薄款/常规/加厚/特厚）",
  "warmthLevel": 3
}
warmthLevel 是保暖等级，取 1 到 5 的整数，1最薄5最暖。
只返回 JSON，不要其他文字。`

const tryOnPrompt = "请将第二张图片中的衣物穿到第一张图片中的人物身上，生成一张虚拟试衣效果图。保持人物的姿势和背景不变，只替换衣物。"

const chatSystemPrompt = `你是一位专业的私人穿搭顾问。请结合用户的身材信息、当前天气和衣橱中的衣物回答穿搭问题。
推荐具体衣物时请使用衣橱中衣物的名称。回答简洁、友好，使用中文。`

func formatNumber(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", f), "0"), ".")
}

func profileSection(p *models.UserProfile) string {
	if p == nil {
		return "用户信息：未填写"
	}
	styles := "无特别偏好"
	if len(p.StylePreference) > 0 {
		styles = strings.Join(p.StylePreference, "、")
	}
	return fmt.Sprintf(`用户信息：
- 性别：%s
- 身高：%scm
- 体重：%skg
- 身材类型：%s
- 风格偏好：%s`, p.Gender, formatNumber(p.Height), formatNumber(p.Weight), p.BodyTypeOrDefault(), styles)
}

func wardrobeSection(clothes []models.Clothing) string {
	summaries := make([]models.ClothingSummary, 0, len(clothes))
	for _, c := range clothes {
		summaries = append(summaries, c.Summary())
	}
	b, _ := json.MarshalIndent(summaries, "", "  ")
	return string(b)
}

func recommendationPrompt(p *models.UserProfile, clothes []models.Clothing, occasion string, temperature float64, weather string) string {
	temp := formatNumber(temperature)
	return fmt.Sprintf(`作为专业穿搭顾问，请根据以下信息推荐3套穿搭方案：

%s

场合：%s
当前温度：%s°C
天气：%s

可选衣物：
%s

请返回 JSON 数组格式：
[
  {
    "id": "推荐1",
    "clothingIds": ["衣物id1", "衣物id2", ...],
    "reason": "推荐理由",
    "score": 95,
    "occasion": "%s",
    "temperature": %s
  }
]
只返回 JSON，不要其他文字。`, profileSection(p), occasion, temp, weather, wardrobeSection(clothes), occasion, temp)
}

func weatherLine(w models.CurrentWeather) string {
	return fmt.Sprintf("%s，%s°C，体感%s°C，湿度%s%%，%s%s级",
		w.Text, formatNumber(w.Temp), formatNumber(w.FeelsLike), formatNumber(w.Humidity), w.WindDir, w.WindScale)
}

func dailyPrompt(p *models.UserProfile, clothes []models.Clothing, w *models.WeatherData) string {
	return fmt.Sprintf(`作为专业穿搭顾问，请根据今天的天气从衣橱中挑选一套日常穿搭。

%s

所在地：%s
天气：%s
穿衣指数：%s

可选衣物：
%s

请返回 JSON 格式：
{
  "recommendation": "一两句话的穿搭建议",
  "clothingIds": ["衣物id1", "衣物id2"]
}
只返回 JSON，不要其他文字。`, profileSection(p), w.Location, weatherLine(w.Current), models.ClothingLevel(w.Current.Temp), wardrobeSection(clothes))
}

func chatContext(p *models.UserProfile, clothes []models.Clothing, w *models.WeatherData) string {
	weather := "当前天气：未知"
	if w != nil {
		weather = fmt.Sprintf("当前天气：%s°C，%s", formatNumber(w.Current.Temp), w.Current.Text)
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n衣橱：\n%s", chatSystemPrompt, profileSection(p), weather, wardrobeSection(clothes))
}
