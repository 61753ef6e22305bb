package followup

// agentSystemPrompt frames the combined analyze call of the agent path.
// The reply must be a single JSON object; CompleteJSON forces JSON output
// and parse failures fall back to a hardcoded plan.
const agentSystemPrompt = `You are a follow-up copilot for insurance sales. ` +
	`Given messy multi-touch history (calls, texts, emails, notes), ` +
	`return a compact JSON plan with: summary, stage, intent_signal, objections[], ` +
	`recommended_actions[], and 3 messages (sms_1, sms_2, email) in the prospect's tone. ` +
	`Prefer concise, human-sounding copy. Keep SMS < 300 chars; email 120-180 words.`

const agentTaskTmpl = `
LEAD:
- %s
- Location: %s
- Industry: %s
- Company size: %s

HISTORY (most recent last):
%s

TASK:
1) One-sentence situation summary.
2) Stage (one of: cold, curious, evaluating, ready_to_switch, closed_lost).
3) Intent signal (short phrase).
4) Objections: array of short strings.
5) Recommended_actions: array of objects:
   - type: one of [sms, email, call_script, task, wait]
   - title: short
   - body: one-liner or script
   - when: now/after_2_days/etc
6) Messages:
   - sms_1 (concise, friendly, prospect tone)
   - sms_2 (value/ROI angle)
   - email (include booking link once on its own line): %s

Return ONLY valid JSON with keys:
summary, stage, intent_signal, objections, recommended_actions, sms_1, sms_2, email
`
