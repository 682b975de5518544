package groq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/recipe"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
)

// recipeSystemPrompt fixes the recipe JSON schema and the formatting
// rules for step granularity, knife-cut sizes, heat levels, and
// timings. The provider is instructed to answer with JSON only.
const recipeSystemPrompt = `あなたは料理アドバイザーの「なにめしシェフ」です。
ユーザーの食材・気分・調理時間に合わせて、家庭で作りやすいレシピを1つ提案してください。
以下のJSON形式で回答してください：
{
  "name": "レシピ名",
  "description": "一言説明",
  "cookingTime": "調理時間（分）",
  "difficulty": "簡単 | 普通 | 本格的",
  "servings": 人数,
  "category": "肉料理 | 魚料理 | 野菜料理 | 麺類 | ご飯もの | スープ | その他",
  "ingredients": [
    { "name": "食材名", "amount": "分量" }
  ],
  "steps": [
    "手順1（具体的な火加減・時間・切り方・調味料の量を含む）",
    "手順2"
  ],
  "tips": "ワンポイントアドバイス"
}

【重要】stepsは料理初心者が見ただけで迷わず作れるレベルで詳細に書いてください：

■ 下準備の手順を必ず含める
- 食材の洗い方（「流水でさっと洗う」「ため水で洗う」など）
- 切り方はサイズまで具体的に（「薄切り＝厚さ約3mm」「一口大＝約2〜3cm角」「みじん切り＝約2mm角」）
- 下味の付け方（「ボウルに入れ、塩小さじ1/2をふって5分おく」など）
- アク抜きや水切りが必要な場合はその方法も記載

■ 調理の手順
- 火加減は必ず記載（弱火・中火・強火）
- 加熱時間の目安を必ず記載（「約2分」「30秒ほど」）
- 調味料は手順の中にも分量を書く（「しょうゆ大さじ1、みりん大さじ1を加える」）
- 油の種類と量も明記（「サラダ油大さじ1をフライパンに入れ中火で熱する」）
- 完成の見た目の目安（「表面がきつね色になったら裏返す」「全体にとろみがついたら火を止める」）
- 混ぜ方の指示（「木べらで底からすくうように混ぜる」「菜箸でほぐしながら炒める」）

■ 盛り付け
- 最後に盛り付けの指示を入れる（「器に盛り、小ねぎを散らして完成」など）

■ 全体
- 6〜10手順程度で記載
- 1つの手順には1〜2つの作業にまとめる（長すぎない）

JSONのみ出力し、それ以外のテキストは含めないでください。`

// lazyAddition constrains lazy-mode suggestions to no-knife recipes
// under five minutes, microwave preferred.
const lazyAddition = "\n包丁を使わない、調理時間5分以内、洗い物が少ないレシピに限定してください。電子レンジ調理を優先してください。"

// nutritionSystemPrompt anchors the PFC estimate with per-100g
// reference densities for common staples and explicit scaling rules.
const nutritionSystemPrompt = `あなたは管理栄養士です。料理名と材料から、1人前あたりの栄養素を正確に推定してください。

【重要な計算ルール】
■ 材料に分量（g、ml、個、本、枚、大さじ、小さじ等）が記載されている場合は、その量をベースに栄養素を計算すること
■ 人数分の材料が記載されている場合は、1人前に換算すること
■ 調理法を考慮すること（揚げ物は吸油分の脂質を加算、茹では水溶性栄養素の減少を考慮）
■ 調味料（砂糖、みりん、小麦粉等）の糖質・脂質も加算すること
■ 油で調理する場合は使用する油の脂質も加算すること

【栄養素の目安（100gあたり）】
- 鶏むね肉: P23g F1.5g C0g 108kcal
- 鶏もも肉: P16g F14g C0g 200kcal
- 豚バラ肉: P14g F35g C0g 386kcal
- 豚ロース: P19g F19g C0g 263kcal
- 牛肉(肩ロース): P17g F26g C0g 316kcal
- 鮭: P20g F4g C0g 133kcal
- 白米(炊飯後): P2.5g F0.3g C37g 168kcal
- パスタ(茹で): P5g F1g C28g 149kcal
- 卵1個(60g): P7g F6g C0.2g 85kcal
- 豆腐(100g): P7g F4g C2g 72kcal
- サラダ油(大さじ1=13g): 120kcal F13g

以下のJSON形式で回答してください：
{
  "protein": 数値(グラム),
  "fat": 数値(グラム),
  "carbs": 数値(グラム),
  "calories": 数値(kcal)
}

JSONのみ出力し、それ以外のテキストは含めないでください。`

// buildRecipeSystemPrompt returns the recipe instruction, with the
// lazy-mode constraint appended when applicable.
func buildRecipeSystemPrompt(mode outbound.Mode) string {
	if mode == outbound.ModeLazy {
		return recipeSystemPrompt + lazyAddition
	}
	return recipeSystemPrompt
}

// buildRecipeUserMessage concatenates only the present optional fields,
// one per line, in fixed order: mode preamble, ingredients, mood,
// cooking time, servings, recent-meals note.
func buildRecipeUserMessage(params outbound.ConsultationParams) string {
	var parts []string

	switch params.Mode {
	case outbound.ModeLazy:
		parts = append(parts, "手抜きモードでお願いします。包丁なし・5分以内の超簡単レシピをお願いします。")
	case outbound.ModeRandom:
		parts = append(parts, "おまかせでレシピを1つ提案してください。")
	}

	if len(params.Ingredients) > 0 {
		parts = append(parts, "冷蔵庫にある食材: "+strings.Join(params.Ingredients, "、"))
	}
	if params.Mood != "" {
		parts = append(parts, "今日の気分: "+params.Mood)
	}
	if params.CookingTime != "" {
		parts = append(parts, "調理時間: "+params.CookingTime)
	}
	if params.Servings > 0 {
		parts = append(parts, "人数: "+strconv.Itoa(params.Servings)+"人分")
	}
	if len(params.RecentMeals) > 0 {
		parts = append(parts, "最近食べたもの: "+strings.Join(params.RecentMeals, "、"))
		parts = append(parts, "最近の食事と被らない、栄養バランスを考慮したレシピをお願いします。")
	}

	return strings.Join(parts, "\n")
}

// buildNutritionUserMessage lists the recipe name and category, then
// the optional ingredient description and serving count.
func buildNutritionUserMessage(params outbound.EstimateParams) string {
	msg := "料理名: " + params.RecipeName + "\nカテゴリ: " + params.Category
	if params.Ingredients != "" {
		msg += "\n材料: " + params.Ingredients
	}
	if params.Servings > 0 {
		msg += fmt.Sprintf("\n人数: %d人分（1人前の栄養素を回答してください）", params.Servings)
	}
	return msg
}

// buildChatSystemPrompt serializes the fixed recipe context verbatim
// into the follow-up system prompt.
func buildChatSystemPrompt(rec *recipe.Recipe) string {
	tips := ""
	if rec.Tips != "" {
		tips = "ワンポイント: " + rec.Tips
	}

	return fmt.Sprintf(`あなたは料理アドバイザーの「なにめしシェフ」です。
ユーザーが今見ているレシピについての質問に答えてください。

【現在のレシピ】
料理名: %s
説明: %s
調理時間: %s分
難易度: %s
人数: %d人分
カテゴリ: %s
材料: %s
手順: %s
%s

ユーザーの質問に対して、親切に・具体的に回答してください。
代替材料の提案、アレンジ方法、コツの説明など幅広く対応してください。
回答は簡潔にまとめてください（長すぎないように）。`,
		rec.Name,
		rec.Description,
		rec.CookingTime,
		rec.Difficulty,
		rec.Servings,
		rec.Category,
		rec.IngredientSummary(),
		rec.NumberedSteps(),
		tips,
	)
}
