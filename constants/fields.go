package constants

// DefaultFieldDescription is the stock resume field description used when the
// caller does not supply one. One field per line; the text before the first
// dash/colon is the field name, the rest is a hint for the model.
const DefaultFieldDescription = `Name – full name of the candidate
Email – valid email address
Phone – phone number
Skills – a list of technical and professional skills
Education – including degree, institution name, and graduation year
Experience – for each job: job title, company name, years worked, and a short description
Certifications – list of certifications, if available
Languages – languages the candidate can speak or write`
