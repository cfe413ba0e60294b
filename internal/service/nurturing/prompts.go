package nurturing

// Prompt templates for the text-generation capability. Variables use the
// same {{name}} tokens as customer-provided templates, so both paths render
// through the one substitution helper.

const initialContactPrompt = `You are writing on behalf of {{business_name}}, a company in the {{industry}} industry.
Products and services: {{products_services}}
Value proposition: {{value_proposition}}

A new lead has come in:
Name: {{lead_name}}
Email: {{lead_email}}
Source: {{lead_source}}
Their message: {{lead_message}}

Write a warm, concise initial contact message that introduces the business and invites a conversation.`

const followUpPrompt = `You are writing a follow-up on behalf of {{business_name}} ({{industry}}).
Lead: {{lead_name}} ({{lead_email}}), source {{lead_source}}.
Days since first contact: {{days_since_contact}}.

Previous outbound messages:
{{previous_communications}}

Write a brief, friendly follow-up that adds value without pressuring the lead.`

const finalFollowUpPrompt = `You are writing the final follow-up on behalf of {{business_name}} ({{industry}}).
Lead: {{lead_name}} ({{lead_email}}), source {{lead_source}}.
Days since first contact: {{days_since_contact}}.

Previous outbound messages:
{{previous_communications}}

This is the last scheduled message. Write a respectful closing note that leaves the door open without asking for anything further.`

const leadReplyPrompt = `You are writing on behalf of {{business_name}} ({{industry}}).
Products and services: {{products_services}}
Value proposition: {{value_proposition}}

The lead {{lead_name}} has replied to your outreach. Conversation so far:
{{previous_communications}}

The lead replied: {{lead_reply}}

Write a helpful, specific response that moves the conversation forward.`

const subjectLinePrompt = `Write a short subject line for a {{email_type}} email from {{business_name}} to {{lead_name}}.
Purpose: {{email_purpose}}
Context from the lead: {{lead_message}}`
