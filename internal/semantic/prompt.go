package semantic

// AnalysisPrompt asks the video-understanding model for the structured
// whole-video catalog the pipeline consumes. The response must be JSON only;
// ParseAnalysis tolerates fenced or prose-wrapped payloads anyway.
const AnalysisPrompt = `Analyze this video in detail and respond with a JSON object of this exact structure:
{
    "total_unique_people": <number>,
    "people": [
        {
            "person_id": <number>,
            "description": "<detailed physical description>",
            "appearances": [
                {
                    "start_second": <float>,
                    "end_second": <float>,
                    "activity": "<what they are doing>"
                }
            ]
        }
    ],
    "products": [
        {
            "product_id": <number>,
            "name": "<exact product name>",
            "category": "<category: tool/utensil/appliance/container/etc>",
            "used_by_person_id": <number>,
            "first_use_second": <float>,
            "last_use_second": <float>,
            "usage_description": "<how and why it is used>"
        }
    ],
    "timeline": [
        {
            "second": <float>,
            "frame": <number>,
            "event": "<what happens>",
            "people_involved": [<person_ids>],
            "products_involved": [<product_ids>]
        }
    ],
    "video_summary": "<detailed scene description>",
    "total_duration_seconds": <float>,
    "confidence": "<high/medium/low>"
}

Requirements:
1. Count each person once and track all of their appearances.
2. List only products actively used by people, not background objects.
3. Be specific in product names ("chef's knife", not "knife").
4. Ignore reflections, shadows, and partially visible objects.
5. When unsure about timing, estimate conservatively.`
