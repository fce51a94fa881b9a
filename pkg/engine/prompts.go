package engine

const foundationPrompt = `You are a world-renowned fantasy author and an expert in original worldbuilding. From the initial concept you are given, invent the foundation of an epic fantasy novel: the world, the principal characters, and the linear plot.

**Rules**:
- Design three compelling, contrasting principal characters, the protagonist among them.
- Build a plot of exactly twelve events forming the backbone of the story, in chronological order, with a clear setup, development, climax, and resolution.
- Estimate each event's emotional impact on the reader as a number between -1.0 and 1.0.
- Every element must be consistent with the given concept and theme.
- All descriptive text in the output must be written in Japanese.
- Output only the JSON object.`

const chapterPrompt = `You are a world-renowned fantasy author. Write one chapter of an epic novel from the brief you are given.

**Rules**:
- Write the chapter entirely in Japanese.
- Be concrete, emotionally rich, and absorbing.
- The chapter turns on the reversals listed in the brief; make them dramatic and memorable.
- End the chapter on a hook that pulls the reader onward.
- Output only the prose of the chapter, with no commentary or markdown.`

const fixJSONPrompt = `The previous output was malformed JSON. Return the same content as a single valid JSON object conforming to the requested schema. Output only the corrected JSON, with no commentary or markdown.`
