package i18n

// translations maps widget string key → language code → display text.
//
// Supported languages: en (English), fr (French), es (Spanish), zh (Simplified Chinese).
var translations = map[string]map[string]string{

	// ─── Header ──────────────────────────────────────────────────────────────
	KeyTitle: {
		"en": "Kingston Waste Collection Assistant",
		"fr": "Assistant de collecte des déchets – Kingston",
		"es": "Asistente de recolección de residuos – Kingston",
		"zh": "Kingston 垃圾回收助手",
	},
	KeySubtitle: {
		"en": "Ask me anything about your waste, recycling, and organics pickup!",
		"fr": "Posez une question sur les ordures, le recyclage et les matières organiques.",
		"es": "Pregunta sobre basura, reciclaje y orgánicos.",
		"zh": "可查询垃圾、回收与厨余（绿桶）收集信息。",
	},
	KeyChangeLang: {
		"en": "Change language",
		"fr": "Changer de langue",
		"es": "Cambiar idioma",
		"zh": "更改语言",
	},

	// ─── Welcome card ────────────────────────────────────────────────────────
	KeyIntro: {
		"en": "Hi! I can help you with waste collection in Kingston. Try asking:",
		"fr": "Salut! Je peux vous aider avec la collecte des déchets à Kingston. Essayez :",
		"es": "¡Hola! Puedo ayudarte con la recolección de residuos en Kingston. Prueba:",
		"zh": "你好！我可以帮助你查询 Kingston 的垃圾收集。试试：",
	},
	KeyExample1: {
		"en": "\"When is my next garbage pickup on Princess Street?\"",
		"fr": "\"Quand est ma prochaine collecte sur Princess Street?\"",
		"es": "\"¿Cuándo es mi próxima recolección en Princess Street?\"",
		"zh": "“Princess Street 的下次收集是什么时候？”",
	},
	KeyExample2: {
		"en": "\"Where do batteries go?\"",
		"fr": "\"Où vont les piles?\"",
		"es": "\"¿Dónde van las baterías?\"",
		"zh": "“电池应该丢到哪里？”",
	},
	KeyExample3: {
		"en": "\"Can I recycle a pizza box?\"",
		"fr": "\"Puis-je recycler une boîte à pizza?\"",
		"es": "\"¿Puedo reciclar una caja de pizza?\"",
		"zh": "“披萨盒可以回收吗？”",
	},
	KeyTip: {
		"en": "Tip: For this demo, I recognize a limited set of streets (try: Princess, Gardiners, Chelsea, Napier, Evergreen).",
		"fr": "Astuce : cette démo reconnaît un nombre limité de rues (ex. Princess, Gardiners, Chelsea, Napier, Evergreen).",
		"es": "Consejo: esta demo reconoce un conjunto limitado de calles (p. ej., Princess, Gardiners, Chelsea, Napier, Evergreen).",
		"zh": "提示：此演示只识别少量街道（如 Princess、Gardiners、Chelsea、Napier、Evergreen）。",
	},

	// ─── Composer ────────────────────────────────────────────────────────────
	KeyPlaceholder: {
		"en": "Ask about your waste collection...",
		"fr": "Posez une question…",
		"es": "Escribe tu pregunta…",
		"zh": "输入你的问题…",
	},
	KeySend: {
		"en": "Send",
		"fr": "Envoyer",
		"es": "Enviar",
		"zh": "发送",
	},
	KeyDisclaimer: {
		"en": "Demo for Kingston Civic Hackathon • Data may not reflect current schedules",
		"fr": "Démo • Les données peuvent ne pas être à jour",
		"es": "Demo • Los datos pueden no estar actualizados",
		"zh": "演示版 • 数据可能不是最新",
	},

	// ─── Chat log ────────────────────────────────────────────────────────────
	// shown in the loading entry while a request is in flight
	KeyThinking: {
		"en": "Thinking...",
		"fr": "Réflexion...",
		"es": "Pensando...",
		"zh": "思考中…",
	},
}
