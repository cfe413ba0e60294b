package review

const reviewRequestPrompt = `Write a short, friendly message from {{business_name}} asking {{customer_name}} to leave a review of their recent purchase. Thank them for their business, mention that feedback helps other customers, and include a clear ask. Keep it under 120 words and do not sound pushy.`
