package personalize

// Prompt templates for the three draft channels. Filled via fmt.Sprintf;
// the email prompt additionally takes the booking link and the signature
// block so the model is told to include both verbatim.

const smsPromptTmpl = `You are an expert insurance SDR writing a personalized SMS.

Lead Info:
%s

Write one SHORT, friendly SMS (<= 160 chars) that:
- Uses the lead's first name
- Naturally references their role or company
- Offers a clear, specific value (coverage review / savings)
- Has a simple CTA to book a quick call

Return ONLY the SMS text.`

const emailPromptTmpl = `You are an expert insurance sales representative writing a personalized email.

Lead Information:
%s

Write a professional email that:
1. Has a compelling subject line (max 50 chars)
2. Opens with their name and company
3. Shows you researched them (reference their role/company)
4. Explains specific value for their situation
5. Includes a clear call-to-action
6. **Include this booking link exactly once on its own line**:
   %s
7. Is concise (150-200 words)
8. Sounds natural and human
9. End with this exact signature block (do not modify content or order):
%s

Format your response EXACTLY like this:
SUBJECT: [subject line]

BODY:
[email body]`

const linkedinPromptTmpl = `Write a SHORT LinkedIn connection note (<= 200 chars).

Lead Info:
%s

Rules:
- Reference their company or role naturally
- Friendly, professional, value-oriented
- Single sentence is okay
- Return ONLY the note text`

// defaultSubject is used when the model reply is missing the SUBJECT line.
const defaultSubject = "Regarding your insurance coverage"
