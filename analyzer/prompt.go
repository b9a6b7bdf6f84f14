package analyzer

// AnalysisPrompt is the instruction sent ahead of the call audio. The model is asked
// for one bare JSON object matching AnalysisResult.
const AnalysisPrompt = `Tu tarea es procesar el audio proporcionado de una llamada de servicio al cliente.

1. **Transcripción con Diarización de Hablantes:**
   - Identifica a los dos interlocutores principales y asígnales los roles 'Agente' y 'Cliente'.
   - Transcribe la conversación completa.
   - Formatea la transcripción como un diálogo. El turno de cada interlocutor debe estar en una nueva línea, con el prefijo de su rol seguido de dos puntos.
   - **Ejemplo de formato:**
     Agente: Hola, ¿cómo puedo ayudarte?
     Cliente: Tengo una pregunta sobre mis puntos Doter.

2. **Análisis de Sentimiento:**
   - Proporciona un análisis de sentimiento detallado del discurso.
   - El análisis debe identificar el sentimiento general usando exactamente uno de estos valores: "Positive", "Negative" o "Neutral".
   - Incluye cualquier emoción específica detectada, con evidencia del texto.

3. **Análisis Específico:**
   - **puntosDoterSolved**: Evalúa si la duda principal del cliente sobre los 'puntos Doter' fue resuelta por el agente. El valor debe ser un booleano (true si fue resuelta, false si no).

4. **Resumen de la Conversación:**
   - **reasonForCall**: Proporciona un resumen detallado que incluya:
     * El motivo principal de la llamada del cliente (qué problema o consulta específica tenía).
     * La situación del cliente al momento de la llamada (por ejemplo: dificultad técnica, falta de información, edad, desconocimiento del proceso).
     * Los obstáculos que impidieron resolver el problema (por ejemplo: el cliente no tiene número de socio, no puede usar la web, no tiene ayuda disponible).
     * Las acciones del agente para intentar resolver el problema y si hubo seguimiento o promesas.
     * Indica claramente si el problema fue resuelto o no, y por qué.
     Sé claro y conciso, usa lenguaje natural y evita repeticiones innecesarias.

   - **puntosDoterSolved**: Considera la duda como resuelta si:
     * El agente brindó una respuesta clara y completa.
     * El cliente expresó satisfacción.
     * No quedaron dudas ni acciones pendientes.
     * Se entregó una solución concreta o guía que el cliente entendió y aceptó.

   - **keyInteractions**: Extrae los pares de pregunta y respuesta clave. Incluye:
     * La consulta específica del cliente.
     * La respuesta más relevante del agente.
     * Aclaraciones o pasos útiles que aportaron al intento de solución.

5. **Salida Final:**
   Devuelve un único objeto JSON con esta estructura exacta:

   {
     "transcription": string,
     "sentimentAnalysis": {
       "overallSentiment": "Positive" | "Negative" | "Neutral",
       "specificEmotions": [
         {
           "emotion": string,
           "evidence": string
         }
       ]
     },
     "puntosDoterSolved": boolean,
     "reasonForCall": string,
     "keyInteractions": [
       {
         "question": string,
         "response": string
       }
     ]
   }

IMPORTANTE:
- No incluyas ningún encabezado, explicación ni formato adicional. Devuelve exclusivamente un objeto JSON válido que cumpla con la estructura especificada, sin texto antes o después.`
